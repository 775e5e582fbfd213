package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleEndpoint(key, name string) Endpoint {
	return Endpoint{
		Key:         key,
		Name:        name,
		Description: "desc",
		Category:    "match",
		Sport:       "cricket",
		Method:      "GET",
		URLTemplate: "match/{{match_key}}/",
	}
}

func TestNewKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	key := NewKey(now)

	if !strings.HasPrefix(key, "api_") {
		t.Errorf("key %q missing api_ prefix", key)
	}
	if len(key) != len("api_")+8+6 {
		t.Errorf("len(key) = %d, want %d", len(key), len("api_")+8+6)
	}

	ts := key[len(key)-6:]
	wantUnix := now.Unix() % 1000000
	var gotUnix int64
	for _, c := range ts {
		if c < '0' || c > '9' {
			t.Fatalf("timestamp suffix %q is not numeric", ts)
		}
		gotUnix = gotUnix*10 + int64(c-'0')
	}
	if gotUnix != wantUnix {
		t.Errorf("timestamp suffix = %d, want %d", gotUnix, wantUnix)
	}
}

func TestNewKey_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := NewKey(now)
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestMemoryRegistry_CRUD(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	created, err := reg.Create(ctx, sampleEndpoint("", "Match Scorecard"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Key == "" {
		t.Fatal("Create() should generate a key")
	}

	got, err := reg.Get(ctx, created.Key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Match Scorecard" {
		t.Errorf("Name = %q, want %q", got.Name, "Match Scorecard")
	}

	got.Name = "Renamed"
	if err := reg.Update(ctx, *got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	updated, _ := reg.Get(ctx, created.Key)
	if updated.Name != "Renamed" {
		t.Errorf("Name after update = %q, want %q", updated.Name, "Renamed")
	}

	if err := reg.Delete(ctx, created.Key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := reg.Get(ctx, created.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRegistry_List_PreservesOrder(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	names := []string{"first", "second", "third"}
	for i, name := range names {
		if _, err := reg.Create(ctx, sampleEndpoint("key_"+string(rune('a'+i)), name)); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(list))
	}
	for i, name := range names {
		if list[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, list[i].Name, name)
		}
	}
}

func TestMemoryRegistry_Create_Duplicate(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if _, err := reg.Create(ctx, sampleEndpoint("api_fixed", "one")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := reg.Create(ctx, sampleEndpoint("api_fixed", "two")); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateKey", err)
	}
}

func TestMemoryRegistry_Validation(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if _, err := reg.Create(ctx, Endpoint{Name: "no method or url"}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Create() error = %v, want ErrInvalidEndpoint", err)
	}
	if err := reg.Update(ctx, Endpoint{Key: "x"}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Update() error = %v, want ErrInvalidEndpoint", err)
	}
}

func TestMemoryRegistry_NotFound(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if _, err := reg.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := reg.Update(ctx, sampleEndpoint("missing", "x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := reg.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

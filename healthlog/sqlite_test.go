package healthlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "healthlog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	statuses := []string{"online", "offline", "online", "slow"}
	for i, status := range statuses {
		e := entryAt(i, status)
		if status == "offline" {
			e.StatusCode = 500
			e.ResponseTimeMS = -1
			e.ErrorMessage = "connection refused"
		}
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, "RS_P_1", "api_x", 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(got))
	}
	if got[0].Status != "slow" {
		t.Errorf("newest Status = %q, want %q", got[0].Status, "slow")
	}
	if got[1].Status != "online" || got[2].Status != "offline" {
		t.Errorf("order = [%s %s %s], want newest first", got[0].Status, got[1].Status, got[2].Status)
	}
	if got[2].ErrorMessage != "connection refused" {
		t.Errorf("ErrorMessage = %q, want round-tripped", got[2].ErrorMessage)
	}
	if got[2].ResponseTimeMS != -1 {
		t.Errorf("ResponseTimeMS = %d, want -1", got[2].ResponseTimeMS)
	}
}

func TestSQLiteStore_Recent_Empty(t *testing.T) {
	store := newTestSQLiteStore(t)

	got, err := store.Recent(context.Background(), "RS_P_1", "api_x", 20)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(Recent) = %d, want 0", len(got))
	}
}

func TestSQLiteStore_Append_MissingKey(t *testing.T) {
	store := newTestSQLiteStore(t)

	if err := store.Append(context.Background(), Entry{ProjectKey: "RS_P_1"}); err != ErrMissingKey {
		t.Errorf("Append() error = %v, want ErrMissingKey", err)
	}
}

// Entries whose fractional seconds are prefixes of each other (.5 vs .52)
// must still come back newest first.
func TestSQLiteStore_Recent_MixedPrecisionTimes(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 12, 0, 1, 0, time.UTC)

	older := Entry{
		ProjectKey:  "RS_P_1",
		EndpointKey: "api_x",
		LogTime:     base.Add(500 * time.Millisecond),
		Status:      "offline",
		StatusCode:  500,
	}
	newer := Entry{
		ProjectKey:  "RS_P_1",
		EndpointKey: "api_x",
		LogTime:     base.Add(520 * time.Millisecond),
		Status:      "online",
		StatusCode:  200,
	}
	if err := store.Append(ctx, older); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, newer); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Recent(ctx, "RS_P_1", "api_x", 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Status != "online" {
		t.Fatalf("Recent()[0].Status = %q, want %q (newest first)", got[0].Status, "online")
	}

	got, err = store.Recent(ctx, "RS_P_1", "api_x", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if got[0].Status != "online" || got[1].Status != "offline" {
		t.Errorf("order = [%s %s], want newest first", got[0].Status, got[1].Status)
	}
}

func TestSQLiteStore_TimesRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	e := entryAt(0, "online")
	if err := store.Append(ctx, e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Recent(ctx, "RS_P_1", "api_x", 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(Recent) = %d, want 1", len(got))
	}
	if !got[0].LogTime.Equal(e.LogTime) {
		t.Errorf("LogTime = %v, want %v", got[0].LogTime, e.LogTime)
	}
}

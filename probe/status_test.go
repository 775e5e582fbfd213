package probe

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		rtMS       int64
		want       Status
	}{
		{"fast 200 is online", 200, 300, StatusOnline},
		{"200 at threshold is online", 200, 1000, StatusOnline},
		{"slow 200 is slow", 200, 1001, StatusSlow},
		{"very slow 200 is slow", 200, 9500, StatusSlow},
		{"400 maps to invalid input", 400, 50, Status("Invalid Input")},
		{"402 maps to inactive project", 402, 50, Status("Inactive Project")},
		{"403 maps to access limited", 403, 50, Status("Access Limited")},
		{"404 maps to resource not found", 404, 50, Status("Resource Not Found")},
		{"500 maps to unknown error", 500, 50, Status("Unknown Error")},
		{"unmapped code gets generic label", 503, 50, Status("HTTP 503")},
		{"slow non-200 still maps by code", 404, 5000, Status("Resource Not Found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.statusCode, tt.rtMS, DefaultSlowThresholdMS); got != tt.want {
				t.Errorf("Classify(%d, %d) = %q, want %q", tt.statusCode, tt.rtMS, got, tt.want)
			}
		})
	}
}

func TestStatus_Healthy(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusOnline, true},
		{StatusSlow, true},
		{StatusOffline, false},
		{Status("Resource Not Found"), false},
		{Status("HTTP 503"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Healthy(); got != tt.want {
				t.Errorf("Status(%q).Healthy() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

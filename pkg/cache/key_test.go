package cache

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercased",
			raw:  "current_London_metric",
			want: "current_london_metric",
		},
		{
			name: "spaces become underscores",
			raw:  "current_New York_imperial",
			want: "current_new_york_imperial",
		},
		{
			name: "commas dropped",
			raw:  "current_London,GB_metric",
			want: "current_londongb_metric",
		},
		{
			name: "comma and space",
			raw:  "forecast_New York, US_3_metric",
			want: "forecast_new_york_us_3_metric",
		},
		{
			name: "slashes become underscores",
			raw:  "current_a/b/../c_metric",
			want: "current_a_b_.._c_metric",
		},
		{
			name: "forecast key",
			raw:  "forecast_Paris_3_metric",
			want: "forecast_paris_3_metric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.raw); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestNormalizeKey_Idempotent ensures normalizing twice equals normalizing once
func TestNormalizeKey_Idempotent(t *testing.T) {
	inputs := []string{
		"current_London_metric",
		"forecast_New York, US_5_imperial",
		"current_São Paulo_metric",
		"current_a//b,,c  d_metric",
		"",
	}

	for _, in := range inputs {
		once := NormalizeKey(in)
		twice := NormalizeKey(once)
		if once != twice {
			t.Errorf("NormalizeKey not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

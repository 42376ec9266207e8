package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"10MB", 10 * 1024 * 1024, false},
		{"512KB", 512 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"1024", 1024, false},
		{"64B", 64, false},
		{"  10MB  ", 10 * 1024 * 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{"", 0, true},
		{"ten", 0, true},
		{"-1MB", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSizeOr(t *testing.T) {
	if got := ParseSizeOr("bogus", 42); got != 42 {
		t.Errorf("expected fallback, got %d", got)
	}
	if got := ParseSizeOr("1KB", 42); got != 1024 {
		t.Errorf("expected 1024, got %d", got)
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"redis://:secret@redis:6379/0", "redis://:xxxxx@redis:6379/0"},
		{"redis://redis:6379/0", "redis://redis:6379/0"},
		{"", ""},
		{"://bad", "***"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := RedactURL(tc.input); got != tc.want {
				t.Errorf("RedactURL(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

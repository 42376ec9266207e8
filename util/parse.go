package util

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size string (e.g. "10MB", "512KB",
// "2GB", "1024") into bytes.
func ParseSize(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}

	var multiplier int64 = 1
	for _, unit := range []struct {
		suffix string
		bytes  int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(v, unit.suffix) {
			multiplier = unit.bytes
			v = strings.TrimSpace(strings.TrimSuffix(v, unit.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * multiplier, nil
}

// ParseSizeOr is ParseSize with a fallback for empty or invalid input.
func ParseSizeOr(s string, fallback int64) int64 {
	n, err := ParseSize(s)
	if err != nil {
		return fallback
	}
	return n
}

// RedactURL hides the password of a URL for safe display in logs.
// Strings that do not parse as URLs are masked entirely.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

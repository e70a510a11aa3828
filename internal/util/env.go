package util

import (
	"strings"
)

// SplitCSV splits a comma separated list, trimming whitespace and dropping empty entries.
func SplitCSV(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}

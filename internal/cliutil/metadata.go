package cliutil

import (
	"fmt"
	"strings"
)

// ParseKeyValue parses a "KEY=VALUE" string into its key and value parts.
// Returns empty strings without error when raw is empty. flag names the
// option in error messages.
func ParseKeyValue(flag, raw string) (string, string, error) {
	if raw == "" {
		return "", "", nil
	}

	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", fmt.Errorf("--%s must use KEY=VALUE format", flag)
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// ParseMetadata turns repeated --metadata KEY=VALUE values into a map. Keys
// are lowercased because S3 stores user metadata keys in lower case.
func ParseMetadata(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	metadata := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, err := ParseKeyValue("metadata", item)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		metadata[strings.ToLower(key)] = value
	}

	return metadata, nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LoadIgnoreList reads the `[notifications] ignore` array from a TOML
// config file. The returned names are matched against entry names and
// labels to suppress notifications for those objects.
//
// A missing file yields an empty list; a file that exists but cannot be
// parsed is an error so a hot-reload does not silently wipe the list.
func LoadIgnoreList(configPath string) ([]string, error) {
	if configPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig struct {
		Notifications struct {
			Ignore []string `toml:"ignore"`
		} `toml:"notifications"`
	}
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	return normalizeIgnoreList(rawConfig.Notifications.Ignore), nil
}

// normalizeIgnoreList trims whitespace and drops empty and duplicate
// entries while preserving order.
func normalizeIgnoreList(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

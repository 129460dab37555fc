// Package config resolves daemon options and watches the config file for
// ignore-list changes. Option values resolve in precedence order:
// explicit CLI flags, then AUDIONODE_* environment variables, then the
// TOML config file.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/audionode/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env key declared in option tags.
const EnvPrefix = "AUDIONODE_"

// LoadConfig fills opts from the TOML file named by its Config field and
// from the environment. Fields carry `toml:"table.key"` and `env:"KEY"`
// tags; flags the user set explicitly on cmd are left alone. The option
// surface is flat strings, bools and ints, which is all this daemon has.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changed := changedFlags(cmd)

	fileValues, err := loadFileValues(configPath(v, t))
	if err != nil {
		return err
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if changed[flagName(sf.Name)] {
			continue
		}

		if path := sf.Tag.Get("toml"); path != "" && fileValues != nil {
			if value := lookup(fileValues, path); value != nil {
				setFromTOML(field, value)
			}
		}

		// Env wins over the file.
		if key := sf.Tag.Get("env"); key != "" {
			if envValue := os.Getenv(EnvPrefix + key); envValue != "" {
				setFromEnv(field, envValue)
			}
		}
	}

	return nil
}

// changedFlags collects the flags the user set explicitly on the command
// line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	})
	return changed
}

// configPath pulls the config file path out of the Config field, if the
// options struct has one.
func configPath(v reflect.Value, t reflect.Type) string {
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Name == "Config" {
			return v.Field(i).String()
		}
	}
	return ""
}

// loadFileValues parses the TOML file into a generic table. A missing
// file is not an error; a file that exists but fails to parse is.
func loadFileValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return values, nil
}

// flagName converts a struct field name to its CLI flag name.
// Example: "LoggingLevel" -> "logging-level".
func flagName(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// lookup walks "table.key" dot notation through the parsed TOML.
func lookup(values map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := values
	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func setFromTOML(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		// go-toml decodes integers as int64.
		if i, ok := value.(int64); ok {
			field.SetInt(i)
		}
	}
}

func setFromEnv(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	}
}

// LoadLoggingConfig reads the `[logging]` table: `level` and `format`
// are global, every other key is a per-module level override. Returns
// defaults if the file is missing or unparseable, since logging must
// come up regardless.
func LoadLoggingConfig(path string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	values, err := loadFileValues(path)
	if err != nil || values == nil {
		return cfg
	}
	table, ok := values["logging"].(map[string]any)
	if !ok {
		return cfg
	}

	for key, raw := range table {
		value, isString := raw.(string)
		if !isString {
			continue
		}
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}

	return cfg
}

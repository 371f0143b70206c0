// config_loader.go: Layered configuration loading (files, dotenv, environment)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/agilira/argus"
	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvironmentVariable selects the runtime environment.
	EnvironmentVariable = "APP_ENVIRONMENT"

	envOverridePrefix    = "APP_"
	envOverrideSeparator = "__"

	// DefaultConfigDir is the configuration directory, relative to the working directory.
	DefaultConfigDir = "configs"
)

// configExtensions lists the supported file extensions in lookup order.
var configExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// ConfigSource records where a Config was loaded from. CreateContext stores it
// in the Context so adapters such as ConfigWatchAdapter can find the files.
type ConfigSource struct {
	Dir   string
	Files []string
}

// ContextOptions configures CreateContext.
type ContextOptions struct {
	// ConfigDir holds base.<ext> and <environment>.<ext>
	ConfigDir string

	// DotEnvFile is loaded before anything else, overriding the process
	// environment. A missing file is ignored.
	DotEnvFile string
}

// DefaultContextOptions returns the conventional layout: ./configs and ./.env.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		ConfigDir:  DefaultConfigDir,
		DotEnvFile: ".env",
	}
}

// CreateContext builds the initial application Context.
//
// The environment comes from APP_ENVIRONMENT (development when unset), then the
// configuration for that environment is loaded with LoadConfig.
func CreateContext(opts ContextOptions) (Context, error) {
	if opts.ConfigDir == "" {
		opts.ConfigDir = DefaultConfigDir
	}
	if opts.DotEnvFile != "" {
		if _, err := os.Stat(opts.DotEnvFile); err == nil {
			if err := godotenv.Overload(opts.DotEnvFile); err != nil {
				return Context{}, NewConfigParseError(opts.DotEnvFile, err)
			}
		}
	}

	env := EnvironmentDevelopment
	if value, ok := os.LookupEnv(EnvironmentVariable); ok && value != "" {
		parsed, err := ParseEnvironment(value)
		if err != nil {
			return Context{}, err
		}
		env = parsed
	}

	cfg, files, err := loadConfigFiles(opts.ConfigDir, env)
	if err != nil {
		return Context{}, err
	}

	app := NewContext()
	app.Environment = env
	app.Config = cfg
	Set(&app, ConfigSource{Dir: opts.ConfigDir, Files: files})
	return app, nil
}

// LoadConfig loads <dir>/base.<ext>, then <dir>/<env>.<ext> on top of it, then
// applies APP_ environment overrides, and validates the result.
//
// Overrides use "__" as the nesting separator: APP_SERVER__PORT=5001 sets
// server.port.
func LoadConfig(dir string, env Environment) (*Config, error) {
	cfg, _, err := loadConfigFiles(dir, env)
	return cfg, err
}

func loadConfigFiles(dir string, env Environment) (*Config, []string, error) {
	if env == "" {
		return nil, nil, NewInvalidEnvironmentError("")
	}

	basePath, err := resolveConfigFile(dir, "base")
	if err != nil {
		return nil, nil, err
	}
	envPath, err := resolveConfigFile(dir, env.String())
	if err != nil {
		return nil, nil, err
	}

	merged := map[string]interface{}{}
	for _, path := range []string{basePath, envPath} {
		layer, err := readConfigFile(path)
		if err != nil {
			return nil, nil, err
		}
		mergeMaps(merged, layer)
	}
	applyEnvOverrides(merged, os.Environ())

	cfg, err := bindConfig(merged)
	if err != nil {
		return nil, nil, NewConfigParseError(envPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, []string{basePath, envPath}, nil
}

// resolveConfigFile finds <dir>/<name>.<ext> for the first supported extension.
func resolveConfigFile(dir, name string) (string, error) {
	for _, ext := range configExtensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", NewConfigNotFoundError(filepath.Join(dir, name+".yaml"))
}

// readConfigFile parses one layer. YAML goes through yaml.v3 (anchors, multi
// line scalars); the other formats through argus.
func readConfigFile(path string) (map[string]interface{}, error) {
	// #nosec G304 -- path is resolved from the configured directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigParseError(path, err)
	}

	format := argus.DetectFormat(path)
	var layer map[string]interface{}
	switch format {
	case argus.FormatYAML:
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, NewConfigParseError(path, err)
		}
	default:
		layer, err = argus.ParseConfig(data, format)
		if err != nil {
			return nil, NewConfigParseError(path, err)
		}
	}

	if layer == nil {
		layer = map[string]interface{}{}
	}
	return normalizeMap(layer), nil
}

// mergeMaps deep-merges src into dst. Nested maps merge key by key; any other
// value in src replaces the one in dst.
func mergeMaps(dst, src map[string]interface{}) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]interface{})
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}

// applyEnvOverrides writes APP_SECTION__KEY=value entries into cfg. Variables
// without a nesting separator (APP_ENVIRONMENT) are not configuration keys.
// A value bound for a string field of Config stays a string. Inside the free-form
// sections a value replacing a string stays a string. Anything else is parsed
// as a scalar.
func applyEnvOverrides(cfg map[string]interface{}, environ []string) {
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, envOverridePrefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(name, envOverridePrefix)), envOverrideSeparator)
		if len(path) < 2 || hasEmptySegment(path) {
			continue
		}

		node := cfg
		for _, segment := range path[:len(path)-1] {
			child, ok := node[segment].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[segment] = child
			}
			node = child
		}
		key := path[len(path)-1]
		if keepsString(path, node[key]) {
			node[key] = value
			continue
		}
		node[key] = parseScalar(value)
	}
}

func keepsString(path []string, current interface{}) bool {
	if target, ok := overrideTarget(path); ok {
		return target.Kind() == reflect.String
	}
	_, isString := current.(string)
	return isString
}

// overrideTarget resolves the type of the Config field an override path lands
// on. Paths that leave the typed structure (settings, adapters) do not resolve.
func overrideTarget(path []string) (reflect.Type, bool) {
	t := reflect.TypeFor[Config]()
	for _, segment := range path {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, false
		}
		field, ok := fieldByJSONName(t, segment)
		if !ok {
			return nil, false
		}
		t = field.Type
	}
	return t, true
}

func fieldByJSONName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func hasEmptySegment(path []string) bool {
	for _, segment := range path {
		if segment == "" {
			return true
		}
	}
	return false
}

// parseScalar interprets an environment value as a YAML scalar, falling back to
// the raw string.
func parseScalar(value string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return value
	}
	switch parsed.(type) {
	case map[string]interface{}, []interface{}, nil:
		return value
	default:
		return parsed
	}
}

// normalizeMap converts map[interface{}]interface{} nodes into string-keyed maps.
func normalizeMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return normalizeMap(v)
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func bindConfig(raw map[string]interface{}) (*Config, error) {
	data, err := sonic.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

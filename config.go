// config.go: Application configuration model and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// Environment is the runtime environment the application runs in.
// The zero value means unset.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)

// ParseEnvironment parses an environment name, case-insensitively.
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(EnvironmentDevelopment):
		return EnvironmentDevelopment, nil
	case string(EnvironmentProduction):
		return EnvironmentProduction, nil
	default:
		return "", NewInvalidEnvironmentError(value)
	}
}

func (e Environment) String() string {
	return string(e)
}

// IsDevelopment reports whether e is the development environment.
func (e Environment) IsDevelopment() bool {
	return e == EnvironmentDevelopment
}

// Config is the application configuration loaded by LoadConfig.
//
// Example (configs/base.yaml):
//
//	server:
//	  port: 5000
//	  host: 127.0.0.1
//	  base_url: http://127.0.0.1:5000
//	  protocol: http
//	  interceptions:
//	    compression:
//	      enable: true
//	    limit_payload:
//	      enable: true
//	      body_limit: 5mb
//	secret:
//	  cookie: change-me
//	  token_expiration: 3600
//	  cookie_expiration: 3600
//	logger:
//	  enable: true
//	  level: info
//	settings:
//	  feature_flags:
//	    beta: true
//	adapters:
//	  cache:
//	    addr: 127.0.0.1:6379
type Config struct {
	Server   ServerConfig   `json:"server" validate:"required"`
	Secret   SecretConfig   `json:"secret"`
	Logger   LoggerConfig   `json:"logger"`
	Settings map[string]any `json:"settings,omitempty"`
	Adapters map[string]any `json:"adapters,omitempty"`
}

// ServerConfig describes where and how the HTTP server listens.
type ServerConfig struct {
	Port          int           `json:"port" validate:"min=0,max=65535"`
	Host          string        `json:"host" validate:"required"`
	BaseURL       string        `json:"base_url" validate:"omitempty,url"`
	Protocol      string        `json:"protocol" validate:"omitempty,oneof=http https"`
	Interceptions Interceptions `json:"interceptions"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Interceptions groups the optional HTTP middlewares. A nil entry is disabled.
type Interceptions struct {
	CORS           *CORSConfig           `json:"cors,omitempty"`
	Compression    *CompressionConfig    `json:"compression,omitempty"`
	LimitPayload   *LimitPayloadConfig   `json:"limit_payload,omitempty"`
	TimeoutRequest *TimeoutRequestConfig `json:"timeout_request,omitempty"`
	Static         *StaticAssetsConfig   `json:"static,omitempty"`
}

// CORSConfig configures cross-origin resource sharing.
// Empty lists fall back to permissive defaults.
type CORSConfig struct {
	Enable       bool     `json:"enable"`
	AllowOrigins []string `json:"allow_origins,omitempty"`
	AllowHeaders []string `json:"allow_headers,omitempty"`
	AllowMethods []string `json:"allow_methods,omitempty"`
	MaxAge       int      `json:"max_age,omitempty" validate:"min=0"`
}

type CompressionConfig struct {
	Enable bool `json:"enable"`
}

// LimitPayloadConfig caps request body size, e.g. "5mb".
type LimitPayloadConfig struct {
	Enable    bool   `json:"enable"`
	BodyLimit string `json:"body_limit" validate:"required_if=Enable true"`
}

// TimeoutRequestConfig sets a global request timeout in milliseconds.
type TimeoutRequestConfig struct {
	Enable  bool `json:"enable"`
	Timeout int  `json:"timeout" validate:"min=0"`
}

// StaticAssetsConfig serves files from a folder, with an optional SPA fallback.
type StaticAssetsConfig struct {
	Enable        bool         `json:"enable"`
	MustExist     bool         `json:"must_exist"`
	Folder        StaticFolder `json:"folder"`
	Fallback      string       `json:"fallback"`
	Precompressed bool         `json:"precompressed"`
}

// StaticFolder maps a URI prefix onto a filesystem path.
type StaticFolder struct {
	URI  string `json:"uri" validate:"required_with=Path,omitempty,static_prefix"`
	Path string `json:"path"`
}

type SecretConfig struct {
	Cookie           string `json:"cookie"`
	TokenExpiration  int64  `json:"token_expiration"`
	CookieExpiration int64  `json:"cookie_expiration"`
}

// LoggerConfig controls the runtime logger. Level is one of trace, debug,
// info, warn or error.
type LoggerConfig struct {
	Enable bool   `json:"enable"`
	Level  string `json:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("static_prefix", validStaticPrefix)
	})
	return validate
}

// validStaticPrefix accepts URI prefixes below the root. Assets nested at "/"
// would take over the catch-all the application routes are mounted on.
func validStaticPrefix(fl validator.FieldLevel) bool {
	return isStaticPrefix(fl.Field().String())
}

func isStaticPrefix(uri string) bool {
	return strings.HasPrefix(uri, "/") && strings.TrimRight(uri, "/") != ""
}

// Validate checks the configuration's struct constraints.
func (c *Config) Validate() error {
	if c == nil {
		return NewConfigValidationError("configuration is nil", nil)
	}
	if err := configValidator().Struct(c); err != nil {
		return NewConfigValidationError(err.Error(), err)
	}
	return nil
}

// DecodeSettings decodes the free-form settings section into out.
func (c *Config) DecodeSettings(out any) error {
	if c == nil || c.Settings == nil {
		return NewSettingsDecodeError("settings", nil)
	}
	return decodeSection("settings", c.Settings, out)
}

// AdapterConfig decodes the configuration block of the named adapter into out.
func (c *Config) AdapterConfig(name string, out any) error {
	if c == nil {
		return NewSettingsDecodeError("adapters."+name, nil)
	}
	section, ok := c.Adapters[name]
	if !ok {
		return NewSettingsDecodeError("adapters."+name, nil)
	}
	return decodeSection("adapters."+name, section, out)
}

func decodeSection(section string, value any, out any) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return NewSettingsDecodeError(section, err)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return NewSettingsDecodeError(section, err)
	}
	return nil
}

// Copyright 2018 SumUp Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"github.com/palantir/stacktrace"
	"github.com/sumup-oss/go-pkgs/os"
)

var errMissingJWTSecret = errors.New("PUBENCRYPT_JWT_SECRET (or `jwt_secret`) is required to serve")

// Config is resolved in three layers: defaults, then an optional HCL file,
// then PUBENCRYPT_* environment variables.
type Config struct {
	ListenAddress string `env:"PUBENCRYPT_LISTEN_ADDRESS"`
	DatabasePath  string `env:"PUBENCRYPT_DATABASE_PATH"`

	JWTSecret     string `env:"PUBENCRYPT_JWT_SECRET"`
	JWTIssuer     string `env:"PUBENCRYPT_JWT_ISSUER"`
	JWTAudience   string `env:"PUBENCRYPT_JWT_AUDIENCE"`
	IdentityClaim string `env:"PUBENCRYPT_IDENTITY_CLAIM"`
	SessionCookie string `env:"PUBENCRYPT_SESSION_COOKIE"`

	LookupTimeout     time.Duration `env:"PUBENCRYPT_LOOKUP_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"PUBENCRYPT_READ_HEADER_TIMEOUT"`
	ReadTimeout       time.Duration `env:"PUBENCRYPT_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"PUBENCRYPT_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"PUBENCRYPT_IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `env:"PUBENCRYPT_SHUTDOWN_TIMEOUT"`

	MaxBodyBytes      int64 `env:"PUBENCRYPT_MAX_BODY_BYTES"`
	KeyNotFoundStatus int   `env:"PUBENCRYPT_KEY_NOT_FOUND_STATUS"`

	LogLevel  string `env:"PUBENCRYPT_LOG_LEVEL"`
	LogFormat string `env:"PUBENCRYPT_LOG_FORMAT"`
}

// fileConfig mirrors Config for HCL decoding. Pointers tell "unset" apart
// from zero values, durations are strings such as "2s".
type fileConfig struct {
	ListenAddress     *string `hcl:"listen_address"`
	DatabasePath      *string `hcl:"database_path"`
	JWTSecret         *string `hcl:"jwt_secret"`
	JWTIssuer         *string `hcl:"jwt_issuer"`
	JWTAudience       *string `hcl:"jwt_audience"`
	IdentityClaim     *string `hcl:"identity_claim"`
	SessionCookie     *string `hcl:"session_cookie"`
	LookupTimeout     *string `hcl:"lookup_timeout"`
	ReadHeaderTimeout *string `hcl:"read_header_timeout"`
	ReadTimeout       *string `hcl:"read_timeout"`
	WriteTimeout      *string `hcl:"write_timeout"`
	IdleTimeout       *string `hcl:"idle_timeout"`
	ShutdownTimeout   *string `hcl:"shutdown_timeout"`
	MaxBodyBytes      *int64  `hcl:"max_body_bytes"`
	KeyNotFoundStatus *int    `hcl:"key_not_found_status"`
	LogLevel          *string `hcl:"log_level"`
	LogFormat         *string `hcl:"log_format"`
}

func Default() *Config {
	return &Config{
		ListenAddress:     ":3000",
		DatabasePath:      "pubencrypt.db",
		IdentityClaim:     "phone",
		LookupTimeout:     2 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MaxBodyBytes:      64 << 10,
		KeyNotFoundStatus: http.StatusNotFound,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load resolves the configuration. `path` may be blank to skip the file layer.
func Load(osExecutor os.OsExecutor, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		content, err := osExecutor.ReadFile(path)
		if err != nil {
			return nil, stacktrace.Propagate(err, "failed to read config file")
		}

		err = cfg.applyHCL(content)
		if err != nil {
			return nil, stacktrace.Propagate(err, "failed to apply config file %s", path)
		}
	}

	err := env.Parse(cfg)
	if err != nil {
		return nil, stacktrace.Propagate(err, "failed to parse environment")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyHCL(content []byte) error {
	var file fileConfig

	err := hcl.Decode(&file, string(content))
	if err != nil {
		return err
	}

	setString(&c.ListenAddress, file.ListenAddress)
	setString(&c.DatabasePath, file.DatabasePath)
	setString(&c.JWTSecret, file.JWTSecret)
	setString(&c.JWTIssuer, file.JWTIssuer)
	setString(&c.JWTAudience, file.JWTAudience)
	setString(&c.IdentityClaim, file.IdentityClaim)
	setString(&c.SessionCookie, file.SessionCookie)
	setString(&c.LogLevel, file.LogLevel)
	setString(&c.LogFormat, file.LogFormat)

	if file.MaxBodyBytes != nil {
		c.MaxBodyBytes = *file.MaxBodyBytes
	}
	if file.KeyNotFoundStatus != nil {
		c.KeyNotFoundStatus = *file.KeyNotFoundStatus
	}

	var result *multierror.Error
	durations := []struct {
		name  string
		raw   *string
		value *time.Duration
	}{
		{"lookup_timeout", file.LookupTimeout, &c.LookupTimeout},
		{"read_header_timeout", file.ReadHeaderTimeout, &c.ReadHeaderTimeout},
		{"read_timeout", file.ReadTimeout, &c.ReadTimeout},
		{"write_timeout", file.WriteTimeout, &c.WriteTimeout},
		{"idle_timeout", file.IdleTimeout, &c.IdleTimeout},
		{"shutdown_timeout", file.ShutdownTimeout, &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}

		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		*d.value = parsed
	}

	return result.ErrorOrNil()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks settings every command relies on.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.DatabasePath == "" {
		result = multierror.Append(result, errors.New("database path must not be blank"))
	}
	if c.LookupTimeout <= 0 {
		result = multierror.Append(result, errors.New("lookup timeout must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		result = multierror.Append(result, errors.New("shutdown timeout must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		result = multierror.Append(result, errors.New("max body bytes must be positive"))
	}
	if c.KeyNotFoundStatus != http.StatusNotFound && c.KeyNotFoundStatus != http.StatusConflict {
		result = multierror.Append(
			result,
			fmt.Errorf("key not found status must be 404 or 409, got %d", c.KeyNotFoundStatus),
		)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("log format must be `text` or `json`, got %q", c.LogFormat))
	}

	return result.ErrorOrNil()
}

// ValidateServe additionally checks settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	var result *multierror.Error

	if c.ListenAddress == "" {
		result = multierror.Append(result, errors.New("listen address must not be blank"))
	}
	if c.JWTSecret == "" {
		result = multierror.Append(result, errMissingJWTSecret)
	}

	return result.ErrorOrNil()
}

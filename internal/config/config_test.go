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
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumup-oss/go-pkgs/os/ostest"
)

func TestLoad(t *testing.T) {
	t.Run(
		"when no config file is given and no environment is set, it returns the defaults",
		func(t *testing.T) {
			osExecutor := ostest.NewFakeOsExecutor(t)

			actual, err := Load(osExecutor, "")
			require.Nil(t, err)

			assert.Equal(t, Default(), actual)
			osExecutor.AssertExpectations(t)
		},
	)

	t.Run(
		"when reading the config file fails, it returns an error",
		func(t *testing.T) {
			osExecutor := ostest.NewFakeOsExecutor(t)
			osExecutor.On("ReadFile", "/etc/pubencrypt.hcl").Return(nil, errors.New("fakeReadError"))

			actual, err := Load(osExecutor, "/etc/pubencrypt.hcl")
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), "failed to read config file")
			osExecutor.AssertExpectations(t)
		},
	)

	t.Run(
		"when the config file sets values, it overrides the defaults and keeps the rest",
		func(t *testing.T) {
			content := []byte(`
listen_address = "127.0.0.1:8080"
database_path = "/var/lib/pubencrypt/users.db"
jwt_secret = "file-secret"
lookup_timeout = "750ms"
key_not_found_status = 409
log_format = "json"
`)
			osExecutor := ostest.NewFakeOsExecutor(t)
			osExecutor.On("ReadFile", "/etc/pubencrypt.hcl").Return(content, nil)

			actual, err := Load(osExecutor, "/etc/pubencrypt.hcl")
			require.Nil(t, err)

			assert.Equal(t, "127.0.0.1:8080", actual.ListenAddress)
			assert.Equal(t, "/var/lib/pubencrypt/users.db", actual.DatabasePath)
			assert.Equal(t, "file-secret", actual.JWTSecret)
			assert.Equal(t, 750*time.Millisecond, actual.LookupTimeout)
			assert.Equal(t, http.StatusConflict, actual.KeyNotFoundStatus)
			assert.Equal(t, "json", actual.LogFormat)
			assert.Equal(t, "phone", actual.IdentityClaim)
			assert.Equal(t, 5*time.Second, actual.ShutdownTimeout)
		},
	)

	t.Run(
		"when the config file is not valid HCL, it returns an error",
		func(t *testing.T) {
			osExecutor := ostest.NewFakeOsExecutor(t)
			osExecutor.On("ReadFile", "/etc/pubencrypt.hcl").Return([]byte(`listen_address = "unterminated`), nil)

			actual, err := Load(osExecutor, "/etc/pubencrypt.hcl")
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), "failed to apply config file")
		},
	)

	t.Run(
		"when the config file has an unparsable duration, it returns an error naming the key",
		func(t *testing.T) {
			osExecutor := ostest.NewFakeOsExecutor(t)
			osExecutor.On("ReadFile", "/etc/pubencrypt.hcl").Return([]byte(`idle_timeout = "soon"`), nil)

			actual, err := Load(osExecutor, "/etc/pubencrypt.hcl")
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), "idle_timeout")
		},
	)

	t.Run(
		"when environment variables are set, they take precedence over the config file",
		func(t *testing.T) {
			t.Setenv("PUBENCRYPT_JWT_SECRET", "env-secret")
			t.Setenv("PUBENCRYPT_LOOKUP_TIMEOUT", "3s")
			t.Setenv("PUBENCRYPT_MAX_BODY_BYTES", "1024")

			osExecutor := ostest.NewFakeOsExecutor(t)
			osExecutor.On("ReadFile", "/etc/pubencrypt.hcl").Return(
				[]byte(`jwt_secret = "file-secret"`),
				nil,
			)

			actual, err := Load(osExecutor, "/etc/pubencrypt.hcl")
			require.Nil(t, err)

			assert.Equal(t, "env-secret", actual.JWTSecret)
			assert.Equal(t, 3*time.Second, actual.LookupTimeout)
			assert.Equal(t, int64(1024), actual.MaxBodyBytes)
		},
	)

	t.Run(
		"when an environment variable cannot be parsed, it returns an error",
		func(t *testing.T) {
			t.Setenv("PUBENCRYPT_KEY_NOT_FOUND_STATUS", "conflict")

			osExecutor := ostest.NewFakeOsExecutor(t)

			actual, err := Load(osExecutor, "")
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), "failed to parse environment")
		},
	)
}

func TestConfig_Validate(t *testing.T) {
	t.Run(
		"when the defaults are used, it returns no error",
		func(t *testing.T) {
			t.Parallel()

			assert.Nil(t, Default().Validate())
		},
	)

	t.Run(
		"when several settings are invalid, it reports all of them",
		func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.DatabasePath = ""
			cfg.LookupTimeout = 0
			cfg.KeyNotFoundStatus = http.StatusGone
			cfg.LogFormat = "xml"

			err := cfg.Validate()
			require.NotNil(t, err)

			assert.Contains(t, err.Error(), "4 errors occurred")
			assert.Contains(t, err.Error(), "database path must not be blank")
			assert.Contains(t, err.Error(), "lookup timeout must be positive")
			assert.Contains(t, err.Error(), "must be 404 or 409, got 410")
			assert.Contains(t, err.Error(), `got "xml"`)
		},
	)
}

func TestConfig_ValidateServe(t *testing.T) {
	t.Run(
		"when the JWT secret is missing, it returns an error",
		func(t *testing.T) {
			t.Parallel()

			err := Default().ValidateServe()
			require.NotNil(t, err)

			assert.Contains(t, err.Error(), errMissingJWTSecret.Error())
		},
	)

	t.Run(
		"when the listen address and JWT secret are set, it returns no error",
		func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.JWTSecret = "secret"

			assert.Nil(t, cfg.ValidateServe())
		},
	)
}

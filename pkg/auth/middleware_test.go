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

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (encryption.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(encryption.Identity), args.Error(1)
}

func newIdentityEchoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}

		_, _ = w.Write([]byte(identity))
	})
}

func TestMiddleware_Wrap(t *testing.T) {
	logger, _ := logrusTest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	t.Run(
		"when bearer token verifies, it attaches the identity and calls the next handler",
		func(t *testing.T) {
			t.Parallel()

			verifier := &mockVerifier{}
			verifier.Test(t)
			verifier.On("Verify", "good-token").Return(encryption.Identity("+4400000000"), nil)

			handler := NewMiddleware(verifier, "", logger).Wrap(newIdentityEchoHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/crypto/encrypt", nil)
			req.Header.Set("Authorization", "Bearer good-token")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, "+4400000000", recorder.Body.String())
			verifier.AssertExpectations(t)
		},
	)

	t.Run(
		"when no bearer header is set, it falls back to the session cookie",
		func(t *testing.T) {
			t.Parallel()

			verifier := &mockVerifier{}
			verifier.Test(t)
			verifier.On("Verify", "cookie-token").Return(encryption.Identity("user-1"), nil)

			handler := NewMiddleware(verifier, "session", logger).Wrap(newIdentityEchoHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/crypto/encrypt", nil)
			req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, "user-1", recorder.Body.String())
		},
	)

	t.Run(
		"when verification fails, it responds 401 without calling the next handler",
		func(t *testing.T) {
			t.Parallel()

			verifier := &mockVerifier{}
			verifier.Test(t)
			verifier.On("Verify", "").Return(encryption.Identity(""), errors.New("fakeVerifyError"))

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			handler := NewMiddleware(verifier, "", logger).Wrap(next)

			req := httptest.NewRequest(http.MethodPost, "/api/crypto/encrypt", nil)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			assert.False(t, nextCalled)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.JSONEq(
				t,
				`{"errors":[{"message":"not authorized","code":"not_authorized"}]}`,
				recorder.Body.String(),
			)
		},
	)

	t.Run(
		"when authorization header is not a bearer header, it verifies a blank token",
		func(t *testing.T) {
			t.Parallel()

			verifier := &mockVerifier{}
			verifier.Test(t)
			verifier.On("Verify", "").Return(encryption.Identity(""), ErrMissingToken)

			handler := NewMiddleware(verifier, "session", logger).Wrap(newIdentityEchoHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/crypto/encrypt", nil)
			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			verifier.AssertExpectations(t)
		},
	)
}

func TestIdentityFromContext(t *testing.T) {
	t.Parallel()

	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)

	identity, ok := IdentityFromContext(WithIdentity(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, encryption.Identity("abc"), identity)
}

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
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/httperror"
)

type tokenVerifier interface {
	Verify(token string) (encryption.Identity, error)
}

type Middleware struct {
	verifier   tokenVerifier
	cookieName string
	logger     logrus.FieldLogger
}

// NewMiddleware builds the auth gate. The token is taken from an
// `Authorization: Bearer` header, falling back to `cookieName` when set.
func NewMiddleware(verifier tokenVerifier, cookieName string, logger logrus.FieldLogger) *Middleware {
	return &Middleware{
		verifier:   verifier,
		cookieName: cookieName,
		logger:     logger,
	}
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.verifier.Verify(m.tokenFromRequest(r))
		if err != nil {
			m.logger.WithError(err).WithField("path", r.URL.Path).Debug("rejected unauthenticated request")

			w.Header().Set("WWW-Authenticate", `Bearer realm="pubencrypt"`)
			httperror.Write(w, http.StatusUnauthorized, httperror.CodeNotAuthorized, "not authorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) tokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}

		return ""
	}

	if m.cookieName == "" {
		return ""
	}

	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
)

const DefaultIdentityClaim = "phone"

var (
	ErrMissingToken    = errors.New("missing session token")
	ErrMissingIdentity = errors.New("session token does not carry an identity")
	errMissingSecret   = errors.New("jwt secret is required")
)

type JWTVerifierConfig struct {
	Secret []byte
	// Issuer and Audience are only checked when non-empty.
	Issuer        string
	Audience      string
	IdentityClaim string
	Now           func() time.Time
}

// JWTVerifier validates HMAC signed session tokens and extracts the caller
// identity from a single claim.
type JWTVerifier struct {
	secret        []byte
	identityClaim string
	parser        *jwt.Parser
}

func NewJWTVerifier(cfg JWTVerifierConfig) (*JWTVerifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, errMissingSecret
	}

	identityClaim := strings.TrimSpace(cfg.IdentityClaim)
	if identityClaim == "" {
		identityClaim = DefaultIdentityClaim
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods(
			[]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			},
		),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		options = append(options, jwt.WithAudience(cfg.Audience))
	}

	return &JWTVerifier{
		secret:        cfg.Secret,
		identityClaim: identityClaim,
		parser:        jwt.NewParser(options...),
	}, nil
}

func (v *JWTVerifier) Verify(token string) (encryption.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	raw, ok := claims[v.identityClaim]
	if !ok {
		return "", ErrMissingIdentity
	}

	var identity string
	switch value := raw.(type) {
	case string:
		identity = strings.TrimSpace(value)
	case float64:
		// NOTE: Phone numbers are sometimes issued as JSON numbers.
		identity = fmt.Sprintf("%.0f", value)
	}

	if identity == "" {
		return "", ErrMissingIdentity
	}

	return encryption.Identity(identity), nil
}

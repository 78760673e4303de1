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

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
)

type identityContextKey struct{}

func WithIdentity(ctx context.Context, identity encryption.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity attached by Middleware and
// whether one was present.
func IdentityFromContext(ctx context.Context) (encryption.Identity, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(identityContextKey{}).(encryption.Identity)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

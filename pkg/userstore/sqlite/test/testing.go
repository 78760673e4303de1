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

package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LookupPublicKey(
	ctx context.Context,
	identity encryption.Identity,
) (*encryption.PublicKeyRecord, error) {
	args := m.Called(ctx, identity)
	returnValue := args.Get(0)
	err := args.Error(1)

	if returnValue == nil {
		return nil, err
	}

	return returnValue.(*encryption.PublicKeyRecord), err
}

func (m *MockStore) PutPublicKey(ctx context.Context, identity encryption.Identity, publicKeyPEM string) error {
	args := m.Called(ctx, identity, publicKeyPEM)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

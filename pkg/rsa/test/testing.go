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
	"crypto/rand"
	stdRsa "crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"hash"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRsaService struct {
	mock.Mock
}

func (m *MockRsaService) ReadPublicKeyFromPath(publicKeyPath string) (*stdRsa.PublicKey, error) {
	args := m.Called(publicKeyPath)
	returnValue := args.Get(0)
	err := args.Error(1)

	if returnValue == nil {
		return nil, err
	}

	return returnValue.(*stdRsa.PublicKey), err
}

func (m *MockRsaService) ParsePublicKeyPEM(publicKeyContent []byte) (*stdRsa.PublicKey, error) {
	args := m.Called(publicKeyContent)
	returnValue := args.Get(0)
	err := args.Error(1)

	if returnValue == nil {
		return nil, err
	}

	return returnValue.(*stdRsa.PublicKey), err
}

func (m *MockRsaService) EncodePublicKeyPEM(pub *stdRsa.PublicKey) ([]byte, error) {
	args := m.Called(pub)
	returnValue := args.Get(0)

	if returnValue == nil {
		return nil, args.Error(1)
	}

	return returnValue.([]byte), args.Error(1)
}

func (m *MockRsaService) EncryptOAEP(
	hash hash.Hash,
	random io.Reader,
	pub *stdRsa.PublicKey,
	msg []byte,
	label []byte,
) ([]byte, error) {
	args := m.Called(hash, random, pub, msg, label)

	returnValue := args.Get(0)

	// NOTE: Workaround lack of get bytes without type-assertion method.
	if returnValue == nil {
		return nil, args.Error(1)
	}

	return returnValue.([]byte), args.Error(1)
}

func (m *MockRsaService) MaxOAEPPayloadSize(pub *stdRsa.PublicKey, hashSize int) int {
	args := m.Called(pub, hashSize)
	return args.Int(0)
}

// GenerateKeyPairPEM returns a fresh RSA keypair of `bits` size together with
// its public half encoded as a `PUBLIC KEY` PEM block.
func GenerateKeyPairPEM(t *testing.T, bits int) (*stdRsa.PrivateKey, []byte) {
	t.Helper()

	privateKey, err := stdRsa.GenerateKey(rand.Reader, bits)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	return privateKey, pem.EncodeToMemory(
		&pem.Block{
			Type:  "PUBLIC KEY",
			Bytes: der,
		},
	)
}

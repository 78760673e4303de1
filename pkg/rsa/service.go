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

package rsa

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/palantir/stacktrace"
	"github.com/sumup-oss/go-pkgs/os"
)

const (
	pemBlockPublicKeyName = "PUBLIC KEY"
)

var (
	ErrInvalidRsaPublicKey = errors.New("public key is not a rsa public key")
	ErrDecodePublicKeyPem  = fmt.Errorf(
		"failed to decode PEM block containing public key. Expected PEM block `%s`",
		pemBlockPublicKeyName,
	)
)

type Service struct {
	osExecutor os.OsExecutor
}

func NewRsaService(osExecutor os.OsExecutor) *Service {
	return &Service{
		osExecutor: osExecutor,
	}
}

func (s *Service) ReadPublicKeyFromPath(publicKeyPath string) (*rsa.PublicKey, error) {
	publicKeyContent, err := s.osExecutor.ReadFile(publicKeyPath)
	if err != nil {
		return nil, stacktrace.Propagate(
			err,
			"unable to read file contents of public key",
		)
	}

	return s.ParsePublicKeyPEM(publicKeyContent)
}

// ParsePublicKeyPEM decodes a single `PUBLIC KEY` PEM block holding a
// SubjectPublicKeyInfo encoded RSA key.
func (s *Service) ParsePublicKeyPEM(publicKeyContent []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(publicKeyContent)
	if block == nil || block.Type != pemBlockPublicKeyName {
		return nil, ErrDecodePublicKeyPem
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, stacktrace.Propagate(
			err,
			"unable to parse PKIX public key",
		)
	}

	switch pub := key.(type) {
	case *rsa.PublicKey:
		return pub, nil
	default:
		return nil, ErrInvalidRsaPublicKey
	}
}

// EncodePublicKeyPEM encodes `pub` as a SubjectPublicKeyInfo `PUBLIC KEY`
// PEM block, the form ParsePublicKeyPEM accepts.
func (s *Service) EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, stacktrace.Propagate(
			err,
			"unable to marshal PKIX public key",
		)
	}

	return pem.EncodeToMemory(
		&pem.Block{
			Type:  pemBlockPublicKeyName,
			Bytes: der,
		},
	), nil
}

func (s *Service) EncryptOAEP(
	hash hash.Hash,
	random io.Reader,
	pub *rsa.PublicKey,
	msg []byte,
	label []byte,
) ([]byte, error) {
	return rsaEncryptOAEP(hash, random, pub, msg, label)
}

// MaxOAEPPayloadSize returns the largest plaintext, in bytes, that fits a
// single OAEP block for `pub` when padded with a digest of `hashSize` bytes.
// A result below 1 means the key is too small for the digest.
func (s *Service) MaxOAEPPayloadSize(pub *rsa.PublicKey, hashSize int) int {
	return pub.Size() - 2*hashSize - 2
}

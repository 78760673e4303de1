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

package encryption

import (
	"context"
	"crypto/rand"
	stdRsa "crypto/rsa"
	"crypto/sha512"
	"errors"
)

type Service struct {
	keyLookup KeyLookup
	rsaSvc    rsaService
	hexSvc    hexSerializer
}

func NewEncryptionService(keyLookup KeyLookup, rsaSvc rsaService, hexSvc hexSerializer) *Service {
	return &Service{
		keyLookup: keyLookup,
		rsaSvc:    rsaSvc,
		hexSvc:    hexSvc,
	}
}

// Encrypt encrypts the request payload under the public key stored for
// `identity` using RSA-OAEP with SHA-512 and returns it hex encoded.
// `identity` is trusted as already authenticated.
// Every failure is returned as *Error.
func (s *Service) Encrypt(
	ctx context.Context,
	identity Identity,
	request *EncryptionRequest,
) (*CiphertextResponse, error) {
	if request == nil || request.Payload == "" {
		return nil, newError(
			KindInvalidInput,
			"must provide valid plain text data to be encrypted",
			nil,
		)
	}

	record, err := s.keyLookup.LookupPublicKey(ctx, identity)
	if err != nil {
		return nil, newError(
			KindUpstreamUnavailable,
			"unable to look up public key, try again later",
			err,
		)
	}

	if record == nil || record.PublicKeyPEM == "" {
		return nil, newError(
			KindKeyNotFound,
			"no public key is registered for the caller",
			nil,
		)
	}

	publicKey, err := s.rsaSvc.ParsePublicKeyPEM([]byte(record.PublicKeyPEM))
	if err != nil {
		return nil, newError(
			KindInvalidKey,
			"registered public key is not a valid RSA public key",
			err,
		)
	}

	maxPayloadSize := s.rsaSvc.MaxOAEPPayloadSize(publicKey, sha512.Size)
	if maxPayloadSize < 1 {
		return nil, newError(
			KindInvalidKey,
			"registered public key is too small for RSA-OAEP with SHA-512",
			nil,
		)
	}

	plaintext := []byte(request.Payload)
	if len(plaintext) > maxPayloadSize {
		return nil, newPayloadTooLargeError(len(plaintext), maxPayloadSize)
	}

	// NOTE: Client went away while the lookup was in flight, nothing to roll back.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, newError(
			KindUpstreamUnavailable,
			"request was cancelled before encryption",
			ctxErr,
		)
	}

	ciphertext, err := s.rsaSvc.EncryptOAEP(sha512.New(), rand.Reader, publicKey, plaintext, nil)
	if err != nil {
		if errors.Is(err, stdRsa.ErrMessageTooLong) {
			return nil, newPayloadTooLargeError(len(plaintext), maxPayloadSize)
		}

		return nil, newError(
			KindInvalidKey,
			"unable to encrypt payload with the registered public key",
			err,
		)
	}

	encoded, err := s.hexSvc.Serialize(ciphertext)
	if err != nil {
		return nil, newError(
			KindInvalidKey,
			"unable to encode ciphertext",
			err,
		)
	}

	return NewCiphertextResponse(string(encoded)), nil
}

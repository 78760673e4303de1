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
	stdRsa "crypto/rsa"
	"hash"
	"io"
)

// KeyLookup resolves the stored public key of an identity.
// A nil record with a nil error means the identity has no key on record.
// Implementations must be safe for concurrent use.
type KeyLookup interface {
	LookupPublicKey(ctx context.Context, identity Identity) (*PublicKeyRecord, error)
}

type rsaService interface {
	ParsePublicKeyPEM(publicKeyContent []byte) (*stdRsa.PublicKey, error)
	EncryptOAEP(hash hash.Hash, random io.Reader, pub *stdRsa.PublicKey, msg []byte, label []byte) ([]byte, error)
	MaxOAEPPayloadSize(pub *stdRsa.PublicKey, hashSize int) int
}

type hexSerializer interface {
	Serialize(raw []byte) ([]byte, error)
}

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

package external_interfaces

import (
	"context"
	stdRsa "crypto/rsa"
	"hash"
	"io"
	"time"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/ini"
)

type RsaService interface {
	ReadPublicKeyFromPath(publicKeyPath string) (*stdRsa.PublicKey, error)
	ParsePublicKeyPEM(publicKeyContent []byte) (*stdRsa.PublicKey, error)
	EncodePublicKeyPEM(pub *stdRsa.PublicKey) ([]byte, error)
	EncryptOAEP(hash hash.Hash, random io.Reader, pub *stdRsa.PublicKey, msg []byte, label []byte) ([]byte, error)
	MaxOAEPPayloadSize(pub *stdRsa.PublicKey, hashSize int) int
}

type HexService interface {
	Serialize(raw []byte) ([]byte, error)
}

type IniService interface {
	Parse(source []byte) (*ini.Content, error)
}

type KeyStore interface {
	encryption.KeyLookup
	PutPublicKey(ctx context.Context, identity encryption.Identity, publicKeyPEM string) error
	Close() error
}

// KeyStoreOpener opens the user store at `databasePath`. Lookups made through
// the returned store are bounded by `lookupTimeout`.
type KeyStoreOpener func(databasePath string, lookupTimeout time.Duration) (KeyStore, error)

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

// Identity is the authenticated caller reference, e.g. a phone number or a
// subject id. It is only ever used as a lookup key.
type Identity string

type EncryptionRequest struct {
	Payload string `json:"payload"`
}

func NewEncryptionRequest(payload string) *EncryptionRequest {
	return &EncryptionRequest{Payload: payload}
}

// PublicKeyRecord associates an identity with its PEM encoded SPKI RSA public key.
type PublicKeyRecord struct {
	Identity     Identity
	PublicKeyPEM string
}

func NewPublicKeyRecord(identity Identity, publicKeyPEM string) *PublicKeyRecord {
	return &PublicKeyRecord{
		Identity:     identity,
		PublicKeyPEM: publicKeyPEM,
	}
}

// CiphertextResponse holds the RSA-OAEP ciphertext as lower-case hex.
type CiphertextResponse struct {
	Ciphertext string
}

func NewCiphertextResponse(ciphertext string) *CiphertextResponse {
	return &CiphertextResponse{Ciphertext: ciphertext}
}

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

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sumup-oss/pubencrypt/pkg/auth"
	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/httperror"
)

const (
	EncryptPath = "/api/crypto/encrypt"

	DefaultMaxBodyBytes = int64(64 << 10)

	codeInternal = "internal_error"
)

type encrypter interface {
	Encrypt(
		ctx context.Context,
		identity encryption.Identity,
		request *encryption.EncryptionRequest,
	) (*encryption.CiphertextResponse, error)
}

// errorKindRecorder is implemented by the request logger's response writer.
type errorKindRecorder interface {
	setErrorKind(kind encryption.Kind)
}

type EncryptHandler struct {
	encryptionSvc     encrypter
	keyNotFoundStatus int
	maxBodyBytes      int64
	logger            logrus.FieldLogger
}

// NewEncryptHandler serves POST EncryptPath. It must sit behind
// auth.Middleware. `keyNotFoundStatus` is either 404 or 409.
func NewEncryptHandler(
	encryptionSvc encrypter,
	keyNotFoundStatus int,
	maxBodyBytes int64,
	logger logrus.FieldLogger,
) *EncryptHandler {
	if keyNotFoundStatus != http.StatusConflict {
		keyNotFoundStatus = http.StatusNotFound
	}

	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	return &EncryptHandler{
		encryptionSvc:     encryptionSvc,
		keyNotFoundStatus: keyNotFoundStatus,
		maxBodyBytes:      maxBodyBytes,
		logger:            logger,
	}
}

func (h *EncryptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httperror.Write(w, http.StatusMethodNotAllowed, httperror.CodeMethodNotAllowed, "method not allowed")
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httperror.Write(w, http.StatusUnauthorized, httperror.CodeNotAuthorized, "not authorized")
		return
	}

	var request encryption.EncryptionRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	err := decoder.Decode(&request)
	if err != nil {
		h.logger.WithError(err).Debug("rejected malformed encrypt request body")
		recordErrorKind(w, encryption.KindInvalidInput)

		httperror.Write(
			w,
			http.StatusBadRequest,
			string(encryption.KindInvalidInput),
			"request body must be a JSON object with a string `payload` field",
		)
		return
	}

	response, err := h.encryptionSvc.Encrypt(r.Context(), identity, &request)
	if err != nil {
		h.writeEncryptionError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(response.Ciphertext))
}

func (h *EncryptHandler) writeEncryptionError(w http.ResponseWriter, r *http.Request, err error) {
	var encErr *encryption.Error
	if !errors.As(err, &encErr) {
		h.logger.WithError(err).Error("encrypt returned an untyped error")
		httperror.Write(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	status := StatusForKind(encErr.Kind, h.keyNotFoundStatus)

	recordErrorKind(w, encErr.Kind)

	entry := h.logger.WithFields(
		logrus.Fields{
			"kind":   encErr.Kind,
			"status": status,
		},
	)
	if encErr.Cause != nil {
		entry = entry.WithError(encErr.Cause)
	}

	switch {
	case r.Context().Err() != nil:
		entry.Debug("encrypt abandoned, client went away")
	case status >= http.StatusInternalServerError:
		entry.Warn("encrypt failed")
	default:
		entry.Info("encrypt rejected")
	}

	if encErr.Kind == encryption.KindUpstreamUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	httperror.Write(w, status, string(encErr.Kind), encErr.Message)
}

func recordErrorKind(w http.ResponseWriter, kind encryption.Kind) {
	if kindRecorder, ok := w.(errorKindRecorder); ok {
		kindRecorder.setErrorKind(kind)
	}
}

// StatusForKind maps an encryption error kind to its HTTP status.
func StatusForKind(kind encryption.Kind, keyNotFoundStatus int) int {
	switch kind {
	case encryption.KindInvalidInput, encryption.KindPayloadTooLarge:
		return http.StatusBadRequest
	case encryption.KindKeyNotFound:
		return keyNotFoundStatus
	case encryption.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

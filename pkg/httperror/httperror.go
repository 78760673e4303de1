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

// Package httperror renders the JSON error body shared by every endpoint:
//
//	{"errors":[{"message":"...","code":"..."}]}
package httperror

import (
	"encoding/json"
	"net/http"
)

const (
	CodeNotAuthorized    = "not_authorized"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeNotFound         = "not_found"
)

type Item struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Body struct {
	Errors []Item `json:"errors"`
}

func NewBody(code, message string) *Body {
	return &Body{
		Errors: []Item{
			{
				Message: message,
				Code:    code,
			},
		},
	}
}

func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	//nolint:errcheck
	json.NewEncoder(w).Encode(NewBody(code, message))
}

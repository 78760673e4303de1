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

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run(
		"when the level is not known, it returns an error",
		func(t *testing.T) {
			t.Parallel()

			actual, err := NewLogger(&bytes.Buffer{}, "chatty", FormatText)
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), `invalid log level "chatty"`)
		},
	)

	t.Run(
		"when the format is not known, it returns an error",
		func(t *testing.T) {
			t.Parallel()

			actual, err := NewLogger(&bytes.Buffer{}, "info", "xml")
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), `unknown log format "xml"`)
		},
	)

	t.Run(
		"when the format is json, it writes one JSON object per entry",
		func(t *testing.T) {
			t.Parallel()

			buff := &bytes.Buffer{}

			logger, err := NewLogger(buff, "debug", FormatJSON)
			require.Nil(t, err)

			logger.WithField("path", "/healthz").Debug("request served")

			var entry map[string]interface{}
			err = json.Unmarshal(buff.Bytes(), &entry)
			require.Nil(t, err)

			assert.Equal(t, "request served", entry["msg"])
			assert.Equal(t, "/healthz", entry["path"])
			assert.Equal(t, "debug", entry["level"])
		},
	)

	t.Run(
		"when the level is warn, it drops info entries",
		func(t *testing.T) {
			t.Parallel()

			buff := &bytes.Buffer{}

			logger, err := NewLogger(buff, "warn", FormatText)
			require.Nil(t, err)

			assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

			logger.Info("ignored")
			assert.Empty(t, buff.String())

			logger.Warn("kept")
			assert.Contains(t, buff.String(), "msg=kept")
		},
	)
}

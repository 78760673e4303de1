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

package ini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Parse(t *testing.T) {
	t.Run(
		"when the source has sections, it returns them in file order without the default section",
		func(t *testing.T) {
			t.Parallel()

			source := []byte(`top_level = ignored

[second]
public_key_path = /tmp/second.pem

[first]
public_key_path = /tmp/first.pem
comment = kept ; inline comment
`)

			svc := NewIniService()

			actual, err := svc.Parse(source)
			require.Nil(t, err)

			require.Len(t, actual.Sections(), 2)
			assert.Equal(t, "second", actual.Sections()[0].Name)
			assert.Equal(t, "first", actual.Sections()[1].Name)

			value, ok := actual.SectionsByName["first"].Value("public_key_path")
			assert.True(t, ok)
			assert.Equal(t, "/tmp/first.pem", value)

			value, ok = actual.SectionsByName["first"].Value("comment")
			assert.True(t, ok)
			assert.Equal(t, "kept", value)

			_, ok = actual.SectionsByName["first"].Value("public_key")
			assert.False(t, ok)
		},
	)

	t.Run(
		"when a value spans several lines in triple quotes, it keeps the line breaks",
		func(t *testing.T) {
			t.Parallel()

			source := []byte("[identity]\npublic_key = \"\"\"-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\"\"\"\n")

			svc := NewIniService()

			actual, err := svc.Parse(source)
			require.Nil(t, err)

			value, ok := actual.SectionsByName["identity"].Value("public_key")
			assert.True(t, ok)
			assert.Equal(t, "-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----", value)
		},
	)

	t.Run(
		"when the source is not valid INI, it returns an error",
		func(t *testing.T) {
			t.Parallel()

			svc := NewIniService()

			actual, err := svc.Parse([]byte("[unterminated\n"))
			require.Nil(t, actual)

			assert.Contains(t, err.Error(), "failed to parse INI contents")
		},
	)
}

func TestContent_AddSection(t *testing.T) {
	t.Parallel()

	content := NewIniContent()
	content.AddSection(NewIniSection("a"))
	content.AddSection(NewIniSection("b"))

	replacement := NewIniSection("a")
	replacement.Values = append(replacement.Values, NewIniSectionValue("k", "v"))
	content.AddSection(replacement)

	assert.Equal(t, []string{"a", "b"}, content.SectionNames)
	assert.Same(t, replacement, content.Sections()[0])
}

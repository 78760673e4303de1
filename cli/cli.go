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

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/palantir/stacktrace"
	"github.com/sumup-oss/go-pkgs/os"
)

// ReadFromStdin prints `promptMessage` to stderr, so stdout stays clean for
// piping, and reads a single line from stdin.
func ReadFromStdin(osExecutor os.OsExecutor, promptMessage string) ([]byte, error) {
	fmt.Fprint(osExecutor.Stderr(), promptMessage)

	value, err := readLine(osExecutor.Stdin())
	if err != nil {
		return nil, stacktrace.Propagate(
			err,
			"failed to read content of stdin",
		)
	}

	if len(value) == 0 {
		return nil, errors.New("empty value")
	}

	return value, nil
}

func readLine(reader io.Reader) ([]byte, error) {
	var readContent []byte

	// NOTE: Read 1 byte at a time to never consume past the first line.
	var readBuff [1]byte

	for {
		n, err := reader.Read(readBuff[:])

		// NOTE: Discard any return characters
		if n > 0 && readBuff[0] != '\r' {
			if readBuff[0] == '\n' {
				return readContent, nil
			}

			readContent = append(readContent, readBuff[0])
		}

		if err != nil {
			if err == io.EOF {
				err = nil
			}

			return readContent, err
		}
	}
}

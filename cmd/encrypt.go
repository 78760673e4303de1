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

package cmd

import (
	"context"
	"fmt"

	"github.com/palantir/stacktrace"
	"github.com/spf13/cobra"
	"github.com/sumup-oss/go-pkgs/os"

	"github.com/sumup-oss/pubencrypt/cli"
	"github.com/sumup-oss/pubencrypt/cmd/external_interfaces"
	"github.com/sumup-oss/pubencrypt/internal/config"
	"github.com/sumup-oss/pubencrypt/pkg/encryption"
)

func NewEncryptCommand(
	osExecutor os.OsExecutor,
	rsaSvc external_interfaces.RsaService,
	hexSvc external_interfaces.HexService,
	openKeyStore external_interfaces.KeyStoreOpener,
) *cobra.Command {
	cmdInstance := &cobra.Command{
		Use:   "encrypt --identity +4917612345678 [--payload 'hello world']",
		Short: "Encrypt a payload under an identity's stored public key",
		Long: "Encrypt a payload with RSA-OAEP (SHA-512) under the public key stored for the identity " +
			"and print the lower-case hex ciphertext. Reads the payload from stdin when --payload is absent.",
		RunE: func(cmdInstance *cobra.Command, args []string) error {
			identity := cmdInstance.Flag("identity").Value.String()
			if identity == "" {
				return stacktrace.NewError("--identity must not be blank")
			}

			cfg, err := config.Load(osExecutor, cmdInstance.Flag("config").Value.String())
			if err != nil {
				return stacktrace.Propagate(err, "failed to load configuration")
			}

			var payload string

			payloadFlag := cmdInstance.Flag("payload")
			if payloadFlag.Changed {
				payload = payloadFlag.Value.String()
			} else {
				stdinContent, err := cli.ReadFromStdin(
					osExecutor,
					"Enter plaintext value to encrypt: ",
				)
				if err != nil {
					return stacktrace.Propagate(
						err,
						"failed to read user input from stdin",
					)
				}

				payload = string(stdinContent)
			}

			keyStore, err := openKeyStore(cfg.DatabasePath, cfg.LookupTimeout)
			if err != nil {
				return stacktrace.Propagate(err, "failed to open user store")
			}
			//nolint:errcheck
			defer keyStore.Close()

			encryptionSvc := encryption.NewEncryptionService(keyStore, rsaSvc, hexSvc)

			ctx := cmdInstance.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			response, err := encryptionSvc.Encrypt(
				ctx,
				encryption.Identity(identity),
				encryption.NewEncryptionRequest(payload),
			)
			if err != nil {
				return stacktrace.Propagate(err, "failed to encrypt payload")
			}

			fmt.Fprintln(osExecutor.Stdout(), response.Ciphertext)

			return nil
		},
	}

	addConfigFlag(cmdInstance)

	cmdInstance.PersistentFlags().String(
		"identity",
		"",
		"Identity whose stored public key is used, as it appears in the session token claim.",
	)
	//nolint:errcheck
	cmdInstance.MarkPersistentFlagRequired("identity")

	cmdInstance.PersistentFlags().String(
		"payload",
		"",
		"Plaintext payload. Read from stdin when omitted.",
	)

	return cmdInstance
}

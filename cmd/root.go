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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sumup-oss/go-pkgs/os"

	"github.com/sumup-oss/pubencrypt/cmd/external_interfaces"
	"github.com/sumup-oss/pubencrypt/pkg/ini"
)

func NewRootCmd(
	osExecutor os.OsExecutor,
	rsaSvc external_interfaces.RsaService,
	hexSvc external_interfaces.HexService,
	openKeyStore external_interfaces.KeyStoreOpener,
) *cobra.Command {
	cmdInstance := &cobra.Command{
		Use:   "pubencrypt",
		Short: "Encrypt payloads under users' stored RSA public keys",
		Long: "Serve and run RSA-OAEP (SHA-512) encryption of payloads " +
			"under the public key stored for an authenticated user.",
		// NOTE: Silence errors and usage since it'll log twice,
		// due to bad cobra API design and the fact that `RunE` actually returns the error
		// that it's going to log either way.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(osExecutor.Stdout(), "Use `--help` to see available commands")
			return nil
		},
	}

	iniSvc := ini.NewIniService()

	cmdInstance.AddCommand(
		NewVersionCmd(osExecutor),
		NewServeCommand(osExecutor, rsaSvc, hexSvc, openKeyStore),
		NewEncryptCommand(osExecutor, rsaSvc, hexSvc, openKeyStore),
		NewImportKeysCommand(osExecutor, rsaSvc, iniSvc, openKeyStore),
	)

	return cmdInstance
}

func addConfigFlag(cmdInstance *cobra.Command) {
	cmdInstance.PersistentFlags().String(
		"config",
		"",
		"Path to an HCL config file. PUBENCRYPT_* environment variables take precedence over it.",
	)
}

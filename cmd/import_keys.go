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
	stdRsa "crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/palantir/stacktrace"
	"github.com/spf13/cobra"
	"github.com/sumup-oss/go-pkgs/os"

	"github.com/sumup-oss/pubencrypt/cmd/external_interfaces"
	"github.com/sumup-oss/pubencrypt/internal/config"
	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/ini"
)

const (
	publicKeyIniKey     = "public_key"
	publicKeyPathIniKey = "public_key_path"
)

func NewImportKeysCommand(
	osExecutor os.OsExecutor,
	rsaSvc external_interfaces.RsaService,
	iniSvc external_interfaces.IniService,
	openKeyStore external_interfaces.KeyStoreOpener,
) *cobra.Command {
	cmdInstance := &cobra.Command{
		Use:   "import-keys --in ./keys.ini",
		Short: "Import users' RSA public keys into the user store",
		Long: "Import PEM encoded RSA public keys from an INI file. " +
			"Every section names an identity and sets either `public_key` or `public_key_path`. " +
			"All keys are validated before any is stored.",
		RunE: func(cmdInstance *cobra.Command, args []string) error {
			cfg, err := config.Load(osExecutor, cmdInstance.Flag("config").Value.String())
			if err != nil {
				return stacktrace.Propagate(err, "failed to load configuration")
			}

			inFilePath := cmdInstance.Flag("in").Value.String()

			inFileContent, err := osExecutor.ReadFile(inFilePath)
			if err != nil {
				return stacktrace.Propagate(
					err,
					"failed to read specified in file path",
				)
			}

			iniContent, err := iniSvc.Parse(inFileContent)
			if err != nil {
				return stacktrace.Propagate(err, "failed to read keys file")
			}

			records, err := publicKeyRecordsFromIni(rsaSvc, iniContent)
			if err != nil {
				return err
			}

			keyStore, err := openKeyStore(cfg.DatabasePath, cfg.LookupTimeout)
			if err != nil {
				return stacktrace.Propagate(err, "failed to open user store")
			}
			//nolint:errcheck
			defer keyStore.Close()

			ctx := cmdInstance.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			for _, record := range records {
				err = keyStore.PutPublicKey(ctx, record.Identity, record.PublicKeyPEM)
				if err != nil {
					return stacktrace.Propagate(
						err,
						"failed to store public key of %s",
						record.Identity,
					)
				}
			}

			fmt.Fprintf(osExecutor.Stdout(), "Imported %d public key(s)\n", len(records))

			return nil
		},
	}

	addConfigFlag(cmdInstance)

	cmdInstance.PersistentFlags().String(
		"in",
		"",
		"Path to the INI file with one section per identity.",
	)
	//nolint:errcheck
	cmdInstance.MarkPersistentFlagRequired("in")

	return cmdInstance
}

// publicKeyRecordsFromIni resolves and validates every section. It reports
// all invalid sections at once. Stored keys are re-encoded, so surrounding
// text in key files is dropped.
func publicKeyRecordsFromIni(
	rsaSvc external_interfaces.RsaService,
	iniContent *ini.Content,
) ([]*encryption.PublicKeyRecord, error) {
	sections := iniContent.Sections()
	if len(sections) == 0 {
		return nil, stacktrace.NewError("keys file does not contain any identity sections")
	}

	var records []*encryption.PublicKeyRecord
	var result *multierror.Error

	for _, section := range sections {
		identity := strings.TrimSpace(section.Name)
		if identity == "" {
			result = multierror.Append(result, errors.New("section with a blank identity"))
			continue
		}

		publicKey, err := sectionPublicKey(rsaSvc, section)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", identity, err))
			continue
		}

		publicKeyPEM, err := rsaSvc.EncodePublicKeyPEM(publicKey)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", identity, err))
			continue
		}

		records = append(
			records,
			encryption.NewPublicKeyRecord(encryption.Identity(identity), string(publicKeyPEM)),
		)
	}

	err := result.ErrorOrNil()
	if err != nil {
		return nil, stacktrace.Propagate(err, "invalid keys file, nothing was imported")
	}

	return records, nil
}

func sectionPublicKey(
	rsaSvc external_interfaces.RsaService,
	section *ini.Section,
) (*stdRsa.PublicKey, error) {
	inline, hasInline := section.Value(publicKeyIniKey)
	path, hasPath := section.Value(publicKeyPathIniKey)

	switch {
	case hasInline && hasPath:
		return nil, fmt.Errorf("set only one of `%s` and `%s`", publicKeyIniKey, publicKeyPathIniKey)
	case hasInline:
		publicKey, err := rsaSvc.ParsePublicKeyPEM([]byte(inline))
		if err != nil {
			return nil, fmt.Errorf("invalid RSA public key: %w", err)
		}

		return publicKey, nil
	case hasPath:
		publicKey, err := rsaSvc.ReadPublicKeyFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("invalid RSA public key at %s: %w", path, err)
		}

		return publicKey, nil
	default:
		return nil, fmt.Errorf("missing `%s` or `%s`", publicKeyIniKey, publicKeyPathIniKey)
	}
}

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
	stdOs "os"
	"os/signal"
	"syscall"

	"github.com/palantir/stacktrace"
	"github.com/spf13/cobra"
	"github.com/sumup-oss/go-pkgs/os"

	"github.com/sumup-oss/pubencrypt/cmd/external_interfaces"
	"github.com/sumup-oss/pubencrypt/internal/config"
	"github.com/sumup-oss/pubencrypt/internal/logging"
	"github.com/sumup-oss/pubencrypt/internal/version"
	"github.com/sumup-oss/pubencrypt/pkg/auth"
	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/httpapi"
)

func NewServeCommand(
	osExecutor os.OsExecutor,
	rsaSvc external_interfaces.RsaService,
	hexSvc external_interfaces.HexService,
	openKeyStore external_interfaces.KeyStoreOpener,
) *cobra.Command {
	cmdInstance := &cobra.Command{
		Use:   "serve [--config ./pubencrypt.hcl]",
		Short: "Serve the encryption HTTP API",
		Long: "Serve POST " + httpapi.EncryptPath + " for callers holding a valid session token. " +
			"Shuts down gracefully on SIGINT/SIGTERM.",
		RunE: func(cmdInstance *cobra.Command, args []string) error {
			cfg, err := config.Load(osExecutor, cmdInstance.Flag("config").Value.String())
			if err != nil {
				return stacktrace.Propagate(err, "failed to load configuration")
			}

			err = cfg.ValidateServe()
			if err != nil {
				return stacktrace.Propagate(err, "invalid configuration")
			}

			logger, err := logging.NewLogger(osExecutor.Stderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return stacktrace.Propagate(err, "failed to set up logging")
			}

			verifier, err := auth.NewJWTVerifier(
				auth.JWTVerifierConfig{
					Secret:        []byte(cfg.JWTSecret),
					Issuer:        cfg.JWTIssuer,
					Audience:      cfg.JWTAudience,
					IdentityClaim: cfg.IdentityClaim,
				},
			)
			if err != nil {
				return stacktrace.Propagate(err, "failed to set up session token verification")
			}

			keyStore, err := openKeyStore(cfg.DatabasePath, cfg.LookupTimeout)
			if err != nil {
				return stacktrace.Propagate(err, "failed to open user store")
			}
			//nolint:errcheck
			defer keyStore.Close()

			encryptionSvc := encryption.NewEncryptionService(keyStore, rsaSvc, hexSvc)

			server := httpapi.NewServer(
				httpapi.ServerConfig{
					ListenAddress:     cfg.ListenAddress,
					ReadHeaderTimeout: cfg.ReadHeaderTimeout,
					ReadTimeout:       cfg.ReadTimeout,
					WriteTimeout:      cfg.WriteTimeout,
					IdleTimeout:       cfg.IdleTimeout,
					ShutdownTimeout:   cfg.ShutdownTimeout,
				},
				auth.NewMiddleware(verifier, cfg.SessionCookie, logger),
				httpapi.NewEncryptHandler(
					encryptionSvc,
					cfg.KeyNotFoundStatus,
					cfg.MaxBodyBytes,
					logger,
				),
				logger,
			)

			ctx := cmdInstance.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			ctx, stop := signal.NotifyContext(ctx, stdOs.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.WithField("version", version.Version).Info("starting pubencrypt")

			return server.Run(ctx)
		},
	}

	addConfigFlag(cmdInstance)

	return cmdInstance
}

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

package main

import (
	"fmt"
	"time"

	"github.com/sumup-oss/go-pkgs/os"

	"github.com/sumup-oss/pubencrypt/cmd"
	"github.com/sumup-oss/pubencrypt/cmd/external_interfaces"
	"github.com/sumup-oss/pubencrypt/pkg/hex"
	"github.com/sumup-oss/pubencrypt/pkg/rsa"
	"github.com/sumup-oss/pubencrypt/pkg/userstore/sqlite"
)

func main() {
	// NOTE: This is pretty much what a dependency injection container would do.
	// It's important to initialize and pass only the most generic services
	// that do not change between business logic implementation.
	osExecutor := &os.RealOsExecutor{}
	rsaSvc := rsa.NewRsaService(osExecutor)
	hexSvc := hex.NewHexService()

	openKeyStore := func(databasePath string, lookupTimeout time.Duration) (external_interfaces.KeyStore, error) {
		store, err := sqlite.Open(databasePath, lookupTimeout)
		if err != nil {
			return nil, err
		}

		return store, nil
	}

	err := cmd.NewRootCmd(
		osExecutor,
		rsaSvc,
		hexSvc,
		openKeyStore,
	).Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(osExecutor.Stderr(), err.Error())
	osExecutor.Exit(1)
}

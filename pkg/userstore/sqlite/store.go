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

// Package sqlite implements the user public key store over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/palantir/stacktrace"
	_ "modernc.org/sqlite"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/sqlitemigrate"
	"github.com/sumup-oss/pubencrypt/pkg/userstore/sqlite/migrations"
)

const (
	lookupPublicKeyQuery = `SELECT public_key_pem FROM users WHERE identity = ?`
	putPublicKeyQuery    = `
INSERT INTO users (identity, public_key_pem, created_at, updated_at)
VALUES (?1, ?2, ?3, ?3)
ON CONFLICT (identity) DO UPDATE SET
    public_key_pem = excluded.public_key_pem,
    updated_at = excluded.updated_at
`
)

var (
	errBlankPath     = errors.New("storage path is required")
	errBlankIdentity = errors.New("identity is required")
)

// Store is safe for concurrent use; *sql.DB pools connections.
type Store struct {
	sqlDB         *sql.DB
	lookupTimeout time.Duration
	now           func() time.Time
}

// Open opens the SQLite file at `path` and applies bundled migrations.
// A positive `lookupTimeout` bounds every LookupPublicKey call.
func Open(path string, lookupTimeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errBlankPath
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, stacktrace.Propagate(err, "failed to open sqlite db")
	}

	err = sqlDB.Ping()
	if err != nil {
		_ = sqlDB.Close()
		return nil, stacktrace.Propagate(err, "failed to ping sqlite db")
	}

	err = sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, stacktrace.Propagate(err, "failed to run migrations")
	}

	return &Store{
		sqlDB:         sqlDB,
		lookupTimeout: lookupTimeout,
		now:           time.Now,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LookupPublicKey returns the record for `identity`, or nil when the
// identity is unknown. A known identity without a key yields a record with a
// blank PublicKeyPEM.
func (s *Store) LookupPublicKey(
	ctx context.Context,
	identity encryption.Identity,
) (*encryption.PublicKeyRecord, error) {
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	var publicKeyPEM sql.NullString

	err := s.sqlDB.QueryRowContext(ctx, lookupPublicKeyQuery, string(identity)).Scan(&publicKeyPEM)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, stacktrace.Propagate(err, "failed to look up public key")
	}

	return encryption.NewPublicKeyRecord(identity, publicKeyPEM.String), nil
}

// PutPublicKey inserts or replaces the public key of `identity`.
func (s *Store) PutPublicKey(ctx context.Context, identity encryption.Identity, publicKeyPEM string) error {
	if strings.TrimSpace(string(identity)) == "" {
		return errBlankIdentity
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		putPublicKeyQuery,
		string(identity),
		publicKeyPEM,
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return stacktrace.Propagate(err, "failed to store public key")
	}

	return nil
}

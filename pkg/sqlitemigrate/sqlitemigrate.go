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

// Package sqlitemigrate applies embedded `.sql` migrations to a SQLite
// database, each file at most once, in lexical order.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/palantir/stacktrace"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

var errNilDB = errors.New("sql db is required")

func Apply(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS) error {
	if sqlDB == nil {
		return errNilDB
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return stacktrace.Propagate(err, "failed to read migrations dir")
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	_, err = sqlDB.ExecContext(
		ctx,
		fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)",
			migrationTable,
		),
	)
	if err != nil {
		return stacktrace.Propagate(err, "failed to ensure migration table")
	}

	for _, file := range sqlFiles {
		err := applyFile(ctx, sqlDB, migrationFS, file)
		if err != nil {
			return stacktrace.Propagate(err, "failed to apply migration %s", file)
		}
	}

	return nil
}

func applyFile(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, file string) error {
	applied, err := isApplied(ctx, sqlDB, file)
	if err != nil {
		return stacktrace.Propagate(err, "failed to check whether migration was applied")
	}
	if applied {
		return nil
	}

	content, err := fs.ReadFile(migrationFS, file)
	if err != nil {
		return stacktrace.Propagate(err, "failed to read migration file")
	}

	upSQL := ExtractUp(string(content))
	if strings.TrimSpace(upSQL) == "" {
		return nil
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return stacktrace.Propagate(err, "failed to begin migration transaction")
	}

	_, err = tx.ExecContext(ctx, upSQL)
	if err != nil && !IsAlreadyExistsError(err) {
		_ = tx.Rollback()
		return stacktrace.Propagate(err, "failed to execute migration")
	}

	_, err = tx.ExecContext(
		ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", migrationTable),
		file,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		_ = tx.Rollback()
		return stacktrace.Propagate(err, "failed to record migration")
	}

	err = tx.Commit()
	if err != nil {
		return stacktrace.Propagate(err, "failed to commit migration")
	}

	return nil
}

// ExtractUp returns the SQL in the `-- +migrate Up` section, or the whole
// content when no markers are present.
func ExtractUp(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}

	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 || downIdx < upIdx {
		return content[upIdx+len(upMarker):]
	}

	return content[upIdx+len(upMarker) : downIdx]
}

func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int

	err := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, stacktrace.Propagate(err, "failed to query %s", migrationTable)
	}

	return true, nil
}

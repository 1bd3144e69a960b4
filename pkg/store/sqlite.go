// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/UnderAOverE/nsync/pkg/defaults"
	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS cluster_records (
	id         TEXT PRIMARY KEY,
	active     INTEGER NOT NULL DEFAULT 0,
	document   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cluster_records_active ON cluster_records(active);
`

// SQLite is a document-oriented record store on a single SQLite file.
// Each cluster record is one row: the id and active flag are extracted into
// columns for keyed updates and the active-only fetch; everything else lives
// in the JSON document body. The handle is safe for concurrent use and is
// constructed by the caller and injected downward; there is no package-level
// client state.
type SQLite struct {
	db *sqlx.DB
}

var _ record.Store = (*SQLite)(nil)

// Open connects to the SQLite database at dsn (a file path or URI), applies
// the schema, and returns the store handle.
func Open(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, "failed to connect to record store", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, "failed to apply record store schema", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// FetchActive returns the documents of all records with active=true.
func (s *SQLite) FetchActive(ctx context.Context) ([]record.Document, error) {
	return s.fetch(ctx, `SELECT id, document FROM cluster_records WHERE active = 1 ORDER BY id`)
}

// FetchAll returns every stored document regardless of the active flag.
func (s *SQLite) FetchAll(ctx context.Context) ([]record.Document, error) {
	return s.fetch(ctx, `SELECT id, document FROM cluster_records ORDER BY id`)
}

func (s *SQLite) fetch(ctx context.Context, query string) ([]record.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.StoreTimeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, "failed to fetch cluster records", err)
	}
	defer rows.Close()

	var docs []record.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, "failed to scan cluster record row", err)
		}
		var doc record.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeStore,
				"stored cluster document is not valid JSON", err, map[string]any{"id": id})
		}
		// The column is authoritative for the update key.
		doc[record.FieldID] = id
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, "failed to iterate cluster records", err)
	}
	return docs, nil
}

// UpdateByID replaces the document stored under id. Returns false with a nil
// error when no row matches.
func (s *SQLite) UpdateByID(ctx context.Context, id string, doc record.Document) (bool, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStore, "failed to encode cluster document", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE cluster_records SET active = ?, document = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolToInt(activeFlag(doc)), string(body), id)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStore, "failed to update cluster record", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStore, "failed to read update result", err)
	}
	return affected > 0, nil
}

// Upsert inserts a document, assigning a fresh id when the document has
// none, and returns the id. Used by the seed tooling; the refresh pipeline
// itself only updates.
func (s *SQLite) Upsert(ctx context.Context, doc record.Document) (string, error) {
	id, _ := doc[record.FieldID].(string)
	if id == "" {
		id = uuid.NewString()
		doc[record.FieldID] = id
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, "failed to encode cluster document", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cluster_records (id, active, document) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active = excluded.active,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`,
		id, boolToInt(activeFlag(doc)), string(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, "failed to upsert cluster record", err)
	}
	return id, nil
}

func activeFlag(doc record.Document) bool {
	b, _ := doc[record.FieldActive].(bool)
	return b
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

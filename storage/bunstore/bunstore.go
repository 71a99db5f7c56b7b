// Package bunstore is a database-backed Storage implementation, the
// "database-backed alternative [that] has the same shape" spec.md §4.9
// calls for. It persists the reference layout of spec.md §6 — one row
// per (tenant_id, resource_type, id) carrying the full resource document
// — in a single table via bun, indexed on (tenant_id, resource_type, id)
// and (tenant_id, resource_type, user_name) as recommended for
// database-backed implementations.
package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/xraph/scimcore/storage"
)

// scimResourceRow is the bun model backing the scim_resources table.
type scimResourceRow struct {
	bun.BaseModel `bun:"table:scim_resources,alias:sr"`

	TenantID     string    `bun:"tenant_id,pk"`
	ResourceType string    `bun:"resource_type,pk"`
	ResourceID   string    `bun:"resource_id,pk"`
	UserName     string    `bun:"user_name"`
	ExternalID   string    `bun:"external_id"`
	Document     string    `bun:"document,type:text,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// Store is the bun/sqlite-backed Storage implementation.
type Store struct {
	db *bun.DB
}

// Open opens (creating if necessary) a sqlite database at dsn and
// ensures the scim_resources table and its indexes exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an already-open bun.DB, for callers that manage the
// underlying connection themselves.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*scimResourceRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*scimResourceRow)(nil)).
		Index("idx_scim_resources_username").
		Column("tenant_id", "resource_type", "user_name").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create username index: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*scimResourceRow)(nil)).
		Index("idx_scim_resources_externalid").
		Column("tenant_id", "resource_type", "external_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: create externalid index: %w", err)
	}
	return nil
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key storage.Key) ([]byte, bool, error) {
	var row scimResourceRow
	err := s.db.NewSelect().
		Model(&row).
		Where("tenant_id = ? AND resource_type = ? AND resource_id = ?", key.TenantID, key.ResourceType, key.ResourceID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bunstore: get: %w", err)
	}
	return []byte(row.Document), true, nil
}

func (s *Store) Put(ctx context.Context, key storage.Key, value []byte) ([]byte, error) {
	row := scimResourceRow{
		TenantID:     key.TenantID,
		ResourceType: key.ResourceType,
		ResourceID:   key.ResourceID,
		UserName:     extractString(value, "userName"),
		ExternalID:   extractString(value, "externalId"),
		Document:     string(value),
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (tenant_id, resource_type, resource_id) DO UPDATE").
		Set("user_name = EXCLUDED.user_name").
		Set("external_id = EXCLUDED.external_id").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("bunstore: put: %w", err)
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key storage.Key) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*scimResourceRow)(nil)).
		Where("tenant_id = ? AND resource_type = ? AND resource_id = ?", key.TenantID, key.ResourceType, key.ResourceID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("bunstore: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bunstore: delete rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Exists(ctx context.Context, key storage.Key) (bool, error) {
	count, err := s.db.NewSelect().
		Model((*scimResourceRow)(nil)).
		Where("tenant_id = ? AND resource_type = ? AND resource_id = ?", key.TenantID, key.ResourceType, key.ResourceID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("bunstore: exists: %w", err)
	}
	return count > 0, nil
}

func (s *Store) List(ctx context.Context, prefix storage.Prefix, offset, limit int) ([]storage.Record, error) {
	var rows []scimResourceRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("tenant_id = ? AND resource_type = ?", prefix.TenantID, prefix.ResourceType).
		Order("resource_id ASC").
		Offset(offset)
	if limit >= 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bunstore: list: %w", err)
	}
	return toRecords(rows), nil
}

func (s *Store) FindByAttribute(ctx context.Context, prefix storage.Prefix, attribute, value string) ([]storage.Record, error) {
	q := s.db.NewSelect().
		Model((*scimResourceRow)(nil)).
		Where("tenant_id = ? AND resource_type = ?", prefix.TenantID, prefix.ResourceType)

	switch attribute {
	case "userName":
		q = q.Where("user_name = ?", value)
	case "externalId":
		q = q.Where("external_id = ?", value)
	default:
		// Not indexed: fall back to scanning the tenant/type scope and
		// matching client-side against the decoded document.
		var rows []scimResourceRow
		if err := s.db.NewSelect().
			Model(&rows).
			Where("tenant_id = ? AND resource_type = ?", prefix.TenantID, prefix.ResourceType).
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("bunstore: find_by_attribute scan: %w", err)
		}
		var out []storage.Record
		for _, row := range rows {
			if extractString([]byte(row.Document), attribute) == value {
				out = append(out, storage.Record{
					Key:   storage.Key{TenantID: row.TenantID, ResourceType: row.ResourceType, ResourceID: row.ResourceID},
					Value: []byte(row.Document),
				})
			}
		}
		return out, nil
	}

	var rows []scimResourceRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("bunstore: find_by_attribute: %w", err)
	}
	return toRecords(rows), nil
}

func (s *Store) Count(ctx context.Context, prefix storage.Prefix) (int, error) {
	count, err := s.db.NewSelect().
		Model((*scimResourceRow)(nil)).
		Where("tenant_id = ? AND resource_type = ?", prefix.TenantID, prefix.ResourceType).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("bunstore: count: %w", err)
	}
	return count, nil
}

func toRecords(rows []scimResourceRow) []storage.Record {
	out := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, storage.Record{
			Key:   storage.Key{TenantID: row.TenantID, ResourceType: row.ResourceType, ResourceID: row.ResourceID},
			Value: []byte(row.Document),
		})
	}
	return out
}

func extractString(document []byte, field string) string {
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return ""
	}
	v, _ := doc[field].(string)
	return v
}

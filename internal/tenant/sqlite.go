package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a local stand-in for the Keyspaces table so the plugin can
// run against a file (or in-memory) database during development and in
// integration tests. Selected with PLUGIN_DEV_DB; never used in production.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS tenant_configs (
		tenant_id TEXT PRIMARY KEY,
		namespace TEXT NOT NULL,
		target_cluster TEXT NOT NULL,
		repo_url TEXT NOT NULL,
		repo_path TEXT NOT NULL,
		labels TEXT,
		params TEXT,
		enabled INTEGER NOT NULL DEFAULT 1
	)`)
	return err
}

// Upsert seeds a tenant row. Dev tooling and tests only; the production
// table is owned by the tenant-ops pipeline and read-only from here.
func (s *SQLiteStore) Upsert(ctx context.Context, c Config, enabled bool) error {
	labels, err := marshalMap(c.Labels)
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	params, err := marshalMap(c.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO tenant_configs
		(tenant_id, namespace, target_cluster, repo_url, repo_path, labels, params, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TenantID, c.Namespace, c.TargetCluster, c.RepoURL, c.RepoPath, labels, params, enabledInt)
	if err != nil {
		return fmt.Errorf("upsert tenant config: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListEnabled(ctx context.Context) ([]Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tenant_id, namespace, target_cluster, repo_url, repo_path, labels, params
		FROM tenant_configs WHERE enabled = 1 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query tenant configs: %w", err)
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		var c Config
		var labels, params sql.NullString
		if err := rows.Scan(&c.TenantID, &c.Namespace, &c.TargetCluster, &c.RepoURL, &c.RepoPath, &labels, &params); err != nil {
			return nil, fmt.Errorf("scan tenant config: %w", err)
		}
		if c.Labels, err = unmarshalMap(labels); err != nil {
			return nil, err
		}
		if c.Params, err = unmarshalMap(params); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant configs: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalMap(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalMap(v sql.NullString) (map[string]string, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(v.String), &m); err != nil {
		return nil, fmt.Errorf("decode map column: %w", err)
	}
	return m, nil
}

package application

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationManager applies module schemas embedded at build time. Versioned
// migration tooling is deliberately out of scope; each module ships its DDL
// as idempotent CREATE TABLE IF NOT EXISTS statements.
type MigrationManager interface {
	RegisterSchema(files *embed.FS)
	Run(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(files *embed.FS) {
	m.schemas = append(m.schemas, files)
}

func (m *migrationManager) Run(ctx context.Context) error {
	for _, schema := range m.schemas {
		files, err := listSQLFiles(schema)
		if err != nil {
			return err
		}
		for _, file := range files {
			ddl, err := schema.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, "failed to read schema file "+file)
			}
			if _, err := m.pool.Exec(ctx, string(ddl)); err != nil {
				return errors.Wrap(err, "failed to apply schema file "+file)
			}
		}
	}
	return nil
}

func listSQLFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk schema files")
	}
	sort.Strings(files)
	return files, nil
}

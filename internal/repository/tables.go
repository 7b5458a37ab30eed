package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type schemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

// MissingTables returns the names from tables that do not exist in the public schema.
func (r *schemaRepository) MissingTables(ctx context.Context, tables []string) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)
	`

	var present []string
	if err := r.db.SelectContext(ctx, &present, query, pq.Array(tables)); err != nil {
		return nil, fmt.Errorf("list schema tables: %w", err)
	}

	found := make(map[string]bool, len(present))
	for _, name := range present {
		found[name] = true
	}

	missing := []string{}
	for _, name := range tables {
		if !found[name] {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

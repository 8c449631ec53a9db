package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/car-build/internal/core/domain"
)

// Schema the catalog expects:
//
//	CREATE TABLE parts (
//		id         BIGINT PRIMARY KEY AUTO_INCREMENT,
//		model      VARCHAR(64)    NOT NULL,
//		name       VARCHAR(255)   NOT NULL,
//		unit_price DECIMAL(12, 2) NOT NULL,
//		INDEX idx_parts_model (model)
//	);
const lookupPartsQuery = `
	SELECT id, name, unit_price
	FROM parts
	WHERE LOWER(model) = LOWER(?)
	ORDER BY name`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) LookupParts(ctx context.Context, model string) ([]domain.Part, error) {
	rows, err := m.db.QueryContext(ctx, lookupPartsQuery, model)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	parts := make([]domain.Part, 0)
	for rows.Next() {
		var p domain.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}

	return parts, nil
}

// Ping satisfies resilience.Probe for connection retries at startup.
func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

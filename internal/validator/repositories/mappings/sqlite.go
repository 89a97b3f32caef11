package mappings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/dbx"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
)

type SqliteRepository struct {
	db dbx.DBTX
}

func NewSqliteRepository(db dbx.DBTX) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Upsert(ctx context.Context, m *models.Mapping) error {

	query :=
		`INSERT INTO flight_mappings (data_hash, ipfs_cid)
	     VALUES (?, ?)
		 ON CONFLICT(data_hash) DO UPDATE SET ipfs_cid = excluded.ipfs_cid
		 `

	_, err := r.db.ExecContext(ctx, query, m.DataHash, m.IpfsCid)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SqliteRepository) GetByHash(ctx context.Context, dataHash string) (*models.Mapping, error) {
	query :=
		`SELECT data_hash, ipfs_cid FROM flight_mappings
		 WHERE data_hash = ?
		 `

	m := &models.Mapping{}
	err := r.db.QueryRowContext(ctx, query, dataHash).Scan(&m.DataHash, &m.IpfsCid)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *SqliteRepository) GetMany(ctx context.Context, dataHashes []string) ([]*models.Mapping, error) {
	if len(dataHashes) == 0 {
		return []*models.Mapping{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dataHashes)), ",")
	query := fmt.Sprintf(
		`SELECT data_hash, ipfs_cid FROM flight_mappings
		 WHERE data_hash IN (%s)
		 `, placeholders)

	args := make([]any, len(dataHashes))
	for i, h := range dataHashes {
		args[i] = h
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Mapping
	for rows.Next() {
		m := &models.Mapping{}
		if err := rows.Scan(&m.DataHash, &m.IpfsCid); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

var _ Repository = (*SqliteRepository)(nil)

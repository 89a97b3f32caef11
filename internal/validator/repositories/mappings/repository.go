// Package mappings persists the content-hash to storage-identifier table.
package mappings

import (
	"context"

	"github.com/dmpetrovs/flightguard/internal/validator/models"
)

type Repository interface {
	// Upsert writes the mapping, overwriting the identifier when the hash
	// already exists. Re-submitting identical content must not error.
	Upsert(ctx context.Context, m *models.Mapping) error
	GetByHash(ctx context.Context, dataHash string) (*models.Mapping, error)
	GetMany(ctx context.Context, dataHashes []string) ([]*models.Mapping, error)
}

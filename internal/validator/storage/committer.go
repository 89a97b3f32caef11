package storage

import (
	"context"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/repositories/mappings"
)

// Committer performs the two storage steps of a compliant run: upload the
// canonical bytes, then upsert the hash to identifier mapping.
type Committer struct {
	store  ContentStore
	repo   mappings.Repository
	logger logging.Logger
}

func NewCommitter(store ContentStore, repo mappings.Repository, logger logging.Logger) *Committer {
	return &Committer{store: store, repo: repo, logger: logger}
}

// Commit uploads data and records the mapping for dataHash. The returned
// identifier is nil when the upload failed; the mapping row then carries the
// failed-upload sentinel instead. Neither failure aborts the run.
func (c *Committer) Commit(ctx context.Context, dataHash string, data []byte) *string {
	var identifier *string

	storedCid := common.UploadFailedCid
	cid, err := c.store.Put(ctx, dataHash, data)
	if err != nil {
		c.logger.Warn(ctx, "content store upload failed", "data_hash", dataHash, "err", err)
	} else {
		identifier = &cid
		storedCid = cid
		c.logger.Info(ctx, "content uploaded", "data_hash", dataHash, "cid", cid)
	}

	mapping := &models.Mapping{DataHash: dataHash, IpfsCid: storedCid}
	if err := c.repo.Upsert(ctx, mapping); err != nil {
		c.logger.Error(ctx, "error storing hash mapping", "data_hash", dataHash, "err", err)
	}

	return identifier
}

package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
)

type fakeStore struct {
	gotName string
	gotData []byte
	cid     string
	err     error
}

func (f *fakeStore) Put(_ context.Context, name string, data []byte) (string, error) {
	f.gotName = name
	f.gotData = data
	return f.cid, f.err
}

type fakeRepo struct {
	upserted []*models.Mapping
	err      error
}

func (f *fakeRepo) Upsert(_ context.Context, m *models.Mapping) error {
	f.upserted = append(f.upserted, m)
	return f.err
}

func (f *fakeRepo) GetByHash(_ context.Context, _ string) (*models.Mapping, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeRepo) GetMany(_ context.Context, _ []string) ([]*models.Mapping, error) {
	return nil, nil
}

func testCommitter(store ContentStore, repo *fakeRepo) *Committer {
	return NewCommitter(store, repo, logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCommit_Success(t *testing.T) {
	store := &fakeStore{cid: "flights/0xabc.json"}
	repo := &fakeRepo{}

	got := testCommitter(store, repo).Commit(context.Background(), "0xabc", []byte(`{"a":1}`))

	if got == nil || *got != "flights/0xabc.json" {
		t.Fatalf("identifier = %v, want flights/0xabc.json", got)
	}
	if store.gotName != "0xabc" || string(store.gotData) != `{"a":1}` {
		t.Errorf("store received name=%q data=%q", store.gotName, store.gotData)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].IpfsCid != "flights/0xabc.json" {
		t.Errorf("unexpected upserts: %+v", repo.upserted)
	}
}

func TestCommit_UploadFailureStoresSentinel(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	repo := &fakeRepo{}

	got := testCommitter(store, repo).Commit(context.Background(), "0xabc", []byte(`{}`))

	if got != nil {
		t.Fatalf("identifier = %v, want nil on upload failure", *got)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("mapping must still be recorded, got %d upserts", len(repo.upserted))
	}
	if repo.upserted[0].IpfsCid != common.UploadFailedCid {
		t.Errorf("stored cid = %q, want %q", repo.upserted[0].IpfsCid, common.UploadFailedCid)
	}
}

func TestCommit_RepoFailureDoesNotAbort(t *testing.T) {
	store := &fakeStore{cid: "flights/0xabc.json"}
	repo := &fakeRepo{err: errors.New("db locked")}

	got := testCommitter(store, repo).Commit(context.Background(), "0xabc", []byte(`{}`))

	if got == nil || *got != "flights/0xabc.json" {
		t.Fatalf("identifier = %v, want populated despite repo failure", got)
	}
}

func TestS3Store_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "0xabc.json"},
		{"flights", "flights/0xabc.json"},
		{"flights/", "flights/0xabc.json"},
	}
	for _, tt := range tests {
		s := NewS3Store(S3Config{KeyPrefix: tt.prefix})
		if got := s.objectKey("0xabc"); got != tt.want {
			t.Errorf("objectKey with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

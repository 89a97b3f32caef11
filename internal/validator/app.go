// Package validator wires the compliance pipeline into a stdin/stdout
// process: one JSON request in, one JSON reply out. Stdout carries only
// protocol JSON; all logging goes to stderr.
package validator

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/term"
	_ "modernc.org/sqlite"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/hashx"
	"github.com/dmpetrovs/flightguard/internal/jsonx"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/config"
	"github.com/dmpetrovs/flightguard/internal/validator/migrations"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/nfz"
	"github.com/dmpetrovs/flightguard/internal/validator/pipeline"
	"github.com/dmpetrovs/flightguard/internal/validator/report"
	"github.com/dmpetrovs/flightguard/internal/validator/repositories/mappings"
	"github.com/dmpetrovs/flightguard/internal/validator/rules"
	"github.com/dmpetrovs/flightguard/internal/validator/storage"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	repo         mappings.Repository
	store        storage.ContentStore
	orchestrator *pipeline.Orchestrator

	stdin  io.Reader
	stdout io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	driver, dialect := "sqlite", "sqlite3"
	if cfg.UsesPostgres() {
		driver, dialect = "pgx", "pgx"
	}

	db, err := sql.Open(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("migration dialect error: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var repo mappings.Repository
	if cfg.UsesPostgres() {
		repo = mappings.NewPostgresRepository(db)
	} else {
		repo = mappings.NewSqliteRepository(db)
	}

	store := storage.NewS3Store(storage.S3Config{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Bucket:       cfg.S3Bucket,
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		KeyPrefix:    cfg.S3KeyPrefix,
	})
	boundedStore := &timeoutStore{inner: store, timeout: cfg.UploadTimeout}
	committer := storage.NewCommitter(boundedStore, repo, logger)

	synth := &timeoutSynth{
		inner:   report.NewSynthesizer(report.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.ReportModel), logger),
		timeout: cfg.ReportTimeout,
	}

	newNfz := func() pipeline.NfzValidator {
		extraEnv := []string{}
		if cfg.OpenAipAPIKey != "" {
			extraEnv = append(extraEnv, "OPENAIP_API_KEY="+cfg.OpenAipAPIKey)
		}
		client := nfz.NewStdioClient(cfg.NfzServerCommand, extraEnv, logger)
		return &timeoutNfz{
			inner:   nfz.NewAdapter(client, logger),
			timeout: cfg.NfzTimeout,
		}
	}

	orchestrator := pipeline.NewOrchestrator(rules.NewEngine(), newNfz, synth, committer, logger)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		repo:         repo,
		store:        boundedStore,
		orchestrator: orchestrator,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
	}, nil
}

// Close releases the database connection.
func (app *App) Close() error {
	return app.db.Close()
}

// request is the envelope read from stdin. For the validate action the
// submission fields sit beside the action field itself.
type request struct {
	Action     string   `json:"action"`
	DataHash   string   `json:"dataHash"`
	IpfsCid    string   `json:"ipfsCid"`
	DataHashes []string `json:"dataHashes"`
}

// Run reads one request from stdin, dispatches it and writes one JSON reply
// to stdout. A returned error means the reply already carries an error
// object and the process should exit non-zero.
func (app *App) Run(ctx context.Context) error {

	if f, ok := app.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(os.Stderr, "reading request from stdin; pipe a JSON object (Ctrl-D to end)")
	}

	raw, err := io.ReadAll(app.stdin)
	if err != nil {
		return app.fail(fmt.Errorf("error reading stdin: %w", err))
	}
	if len(raw) == 0 {
		return app.fail(common.ErrorEmptyInput)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return app.fail(fmt.Errorf("%w: %v", common.ErrorInvalidInput, err))
	}
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return app.fail(fmt.Errorf("%w: %v", common.ErrorInvalidInput, err))
	}

	switch req.Action {
	case "", "validate":
		return app.runValidate(ctx, fields)
	case "update_mapping":
		return app.runUpdateMapping(ctx, req)
	case "get_mapping":
		return app.runGetMapping(ctx, req)
	case "get_mappings":
		return app.runGetMappings(ctx, req)
	case "process_dgip":
		return app.runProcessDgip(ctx, fields)
	default:
		return app.fail(fmt.Errorf("unknown action: %s", req.Action))
	}
}

func (app *App) runValidate(ctx context.Context, fields map[string]any) error {
	sub := models.Submission(fields)
	delete(sub, "action")

	outcome, err := app.orchestrator.Run(ctx, sub)
	if err != nil {
		return app.fail(err)
	}
	return app.reply(outcome)
}

func (app *App) runUpdateMapping(ctx context.Context, req request) error {
	if req.DataHash == "" {
		return app.fail(errors.New("update_mapping requires dataHash"))
	}
	m := &models.Mapping{DataHash: req.DataHash, IpfsCid: req.IpfsCid}
	if err := app.repo.Upsert(ctx, m); err != nil {
		return app.fail(err)
	}
	return app.reply(map[string]any{"status": "ok"})
}

func (app *App) runGetMapping(ctx context.Context, req request) error {
	if req.DataHash == "" {
		return app.fail(errors.New("get_mapping requires dataHash"))
	}
	m, err := app.repo.GetByHash(ctx, req.DataHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return app.reply(map[string]any{"dataHash": req.DataHash, "ipfsCid": nil})
		}
		return app.fail(err)
	}
	return app.reply(m)
}

func (app *App) runGetMappings(ctx context.Context, req request) error {
	ms, err := app.repo.GetMany(ctx, req.DataHashes)
	if err != nil {
		return app.fail(err)
	}
	if ms == nil {
		ms = []*models.Mapping{}
	}
	return app.reply(map[string]any{"mappings": ms})
}

// runProcessDgip hashes a generated flight path log and uploads it to the
// content store. There is no mapping row for generated paths; the caller
// keeps the hash/cid pair itself, and an upload failure only nulls the cid.
func (app *App) runProcessDgip(ctx context.Context, fields map[string]any) error {
	raw, ok := fields["dgipLog"]
	if !ok {
		return app.fail(errors.New("process_dgip requires dgipLog"))
	}
	waypoints, ok := raw.([]any)
	if !ok {
		return app.fail(errors.New("dgipLog must be a JSON array of waypoints"))
	}
	if len(waypoints) == 0 {
		return app.reply(map[string]any{
			"dgipDataHash": nil,
			"ipfsCid":      nil,
			"error":        "No DGIP log data received.",
		})
	}

	wrapped := map[string]any{
		"generated_path": map[string]any{"waypoints": waypoints},
	}
	data, err := jsonx.MarshalCanonical(wrapped)
	if err != nil {
		return app.fail(fmt.Errorf("error serializing DGIP data: %w", err))
	}
	// Generated-path consumers expect bare hex, without the 0x prefix that
	// submission hashes carry.
	hash := hex.EncodeToString(hashx.Keccak256(data))

	var cid any
	if stored, err := app.store.Put(ctx, hash, data); err != nil {
		app.logger.Warn(ctx, "DGIP upload failed, continuing without cid", "err", err)
	} else {
		cid = stored
	}
	return app.reply(map[string]any{
		"dgipDataHash": hash,
		"ipfsCid":      cid,
		"error":        nil,
	})
}

func (app *App) reply(v any) error {
	enc := json.NewEncoder(app.stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing reply: %w", err)
	}
	return nil
}

func (app *App) fail(err error) error {
	app.logger.Error(context.Background(), "request failed", "err", err)
	_ = app.reply(map[string]any{"error": err.Error()})
	return err
}

// Per-call deadlines for the external boundaries. The reference behavior
// runs these calls without timeouts; bounding them here is a deliberate
// hardening deviation.

type timeoutNfz struct {
	inner   *nfz.Adapter
	timeout time.Duration
}

func (t *timeoutNfz) Validate(ctx context.Context, sub models.Submission) models.NfzResult {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Validate(ctx, sub)
}

func (t *timeoutNfz) Close() error {
	return t.inner.Close()
}

type timeoutSynth struct {
	inner   *report.Synthesizer
	timeout time.Duration
}

func (t *timeoutSynth) Synthesize(ctx context.Context, sub models.Submission, findings models.RuleFindings, nfzResult models.NfzResult) string {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Synthesize(ctx, sub, findings, nfzResult)
}

type timeoutStore struct {
	inner   storage.ContentStore
	timeout time.Duration
}

func (t *timeoutStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Put(ctx, name, data)
}

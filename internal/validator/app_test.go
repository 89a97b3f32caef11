package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/pipeline"
	"github.com/dmpetrovs/flightguard/internal/validator/rules"
)

type memRepo struct {
	rows map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]string{}}
}

func (r *memRepo) Upsert(_ context.Context, m *models.Mapping) error {
	r.rows[m.DataHash] = m.IpfsCid
	return nil
}

func (r *memRepo) GetByHash(_ context.Context, dataHash string) (*models.Mapping, error) {
	cid, ok := r.rows[dataHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Mapping{DataHash: dataHash, IpfsCid: cid}, nil
}

func (r *memRepo) GetMany(_ context.Context, dataHashes []string) ([]*models.Mapping, error) {
	var out []*models.Mapping
	for _, h := range dataHashes {
		if cid, ok := r.rows[h]; ok {
			out = append(out, &models.Mapping{DataHash: h, IpfsCid: cid})
		}
	}
	return out, nil
}

type stubNfz struct{}

func (stubNfz) Validate(_ context.Context, _ models.Submission) models.NfzResult {
	return models.NfzResult{Status: models.NfzSuccess, Payload: []any{"clear"}}
}

func (stubNfz) Close() error { return nil }

type stubSynth struct{}

func (stubSynth) Synthesize(_ context.Context, _ models.Submission, _ models.RuleFindings, _ models.NfzResult) string {
	return "report"
}

type stubCommitter struct{}

func (stubCommitter) Commit(_ context.Context, _ string, _ []byte) *string {
	cid := "flights/test.json"
	return &cid
}

type stubStore struct {
	gotName string
	gotData []byte
	err     error
}

func (s *stubStore) Put(_ context.Context, name string, data []byte) (string, error) {
	s.gotName, s.gotData = name, data
	if s.err != nil {
		return "", s.err
	}
	return "flights/" + name + ".json", nil
}

func testApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine := &rules.Engine{Now: func() time.Time {
		return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	}}
	o := pipeline.NewOrchestrator(engine,
		func() pipeline.NfzValidator { return stubNfz{} },
		stubSynth{}, stubCommitter{}, logger)

	out := &bytes.Buffer{}
	return &App{
		logger:       logger,
		repo:         newMemRepo(),
		store:        &stubStore{},
		orchestrator: o,
		stdin:        strings.NewReader(input),
		stdout:       out,
	}, out
}

func decodeReply(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	var reply map[string]any
	if err := json.Unmarshal(out.Bytes(), &reply); err != nil {
		t.Fatalf("reply is not JSON: %v (%s)", err, out.String())
	}
	return reply
}

func TestRun_ValidateAction(t *testing.T) {
	app, out := testApp(t, `{
		"action": "validate",
		"droneName": "Falcon-1",
		"weight": 700,
		"flightDate": "2026-06-16",
		"startTime": "10:00",
		"endTime": "11:30",
		"flightAreaCenter": "56.9496, 24.1052",
		"flightAreaRadius": 2000,
		"flightAreaMaxHeight": 100
	}`)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	reply := decodeReply(t, out)
	if reply["is_critically_compliant"] != true {
		t.Errorf("reply = %v, want compliant", reply)
	}
	if hash, _ := reply["dataHash"].(string); !strings.HasPrefix(hash, "0x") {
		t.Errorf("dataHash = %v", reply["dataHash"])
	}
}

func TestRun_DefaultActionIsValidate(t *testing.T) {
	app, out := testApp(t, `{"weight": "heavy"}`)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	reply := decodeReply(t, out)
	if reply["is_critically_compliant"] != false {
		t.Errorf("reply = %v, want non-compliant", reply)
	}
	if reply["dataHash"] != nil {
		t.Errorf("dataHash = %v, want null", reply["dataHash"])
	}
}

func TestRun_MappingActions(t *testing.T) {
	app, out := testApp(t, `{"action":"update_mapping","dataHash":"0xabc","ipfsCid":"bafyCID"}`)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("update_mapping error: %v", err)
	}
	if reply := decodeReply(t, out); reply["status"] != "ok" {
		t.Fatalf("update_mapping reply = %v", reply)
	}

	repo := app.repo
	app, out = testApp(t, `{"action":"get_mapping","dataHash":"0xabc"}`)
	app.repo = repo
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("get_mapping error: %v", err)
	}
	if reply := decodeReply(t, out); reply["ipfsCid"] != "bafyCID" {
		t.Fatalf("get_mapping reply = %v", reply)
	}

	app, out = testApp(t, `{"action":"get_mappings","dataHashes":["0xabc","0xmissing"]}`)
	app.repo = repo
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("get_mappings error: %v", err)
	}
	reply := decodeReply(t, out)
	list, ok := reply["mappings"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("get_mappings reply = %v", reply)
	}
}

func TestRun_GetMappingNotFoundReturnsNull(t *testing.T) {
	app, out := testApp(t, `{"action":"get_mapping","dataHash":"0xghost"}`)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	reply := decodeReply(t, out)
	if reply["ipfsCid"] != nil {
		t.Errorf("ipfsCid = %v, want null", reply["ipfsCid"])
	}
}

func TestRun_InvalidInput(t *testing.T) {
	for name, input := range map[string]string{
		"empty":   "",
		"badjson": "{not json",
	} {
		t.Run(name, func(t *testing.T) {
			app, out := testApp(t, input)
			if err := app.Run(context.Background()); err == nil {
				t.Fatal("want an error for invalid input")
			}
			reply := decodeReply(t, out)
			if reply["error"] == nil {
				t.Errorf("reply = %v, want an error object", reply)
			}
		})
	}
}

func TestRun_ProcessDgip(t *testing.T) {
	app, out := testApp(t, `{"action":"process_dgip","dgipLog":[
		{"lat":56.9496,"lng":24.1052,"altitude":100.0},
		{"lat":56.9497,"lng":24.1053,"altitude":110.0}
	]}`)
	store := &stubStore{}
	app.store = store

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	reply := decodeReply(t, out)
	hash, _ := reply["dgipDataHash"].(string)
	if len(hash) != 64 || strings.HasPrefix(hash, "0x") {
		t.Errorf("dgipDataHash = %v, want bare 64-char hex", reply["dgipDataHash"])
	}
	if reply["ipfsCid"] != "flights/"+hash+".json" {
		t.Errorf("ipfsCid = %v", reply["ipfsCid"])
	}
	if reply["error"] != nil {
		t.Errorf("error = %v, want null", reply["error"])
	}
	if !strings.Contains(string(store.gotData), `"generated_path":{"waypoints":[`) {
		t.Errorf("stored payload missing the generated_path wrapper: %s", store.gotData)
	}
	if store.gotName != hash {
		t.Errorf("stored under %q, want the data hash", store.gotName)
	}
}

func TestRun_ProcessDgip_UploadFailureKeepsHash(t *testing.T) {
	app, out := testApp(t, `{"action":"process_dgip","dgipLog":[{"lat":1.0,"lng":2.0}]}`)
	app.store = &stubStore{err: context.DeadlineExceeded}

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	reply := decodeReply(t, out)
	if hash, _ := reply["dgipDataHash"].(string); len(hash) != 64 {
		t.Errorf("dgipDataHash = %v, want a hash despite the upload failure", reply["dgipDataHash"])
	}
	if reply["ipfsCid"] != nil {
		t.Errorf("ipfsCid = %v, want null", reply["ipfsCid"])
	}
	if reply["error"] != nil {
		t.Errorf("error = %v, want null", reply["error"])
	}
}

func TestRun_ProcessDgip_EmptyLog(t *testing.T) {
	app, out := testApp(t, `{"action":"process_dgip","dgipLog":[]}`)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("an empty log is a soft failure, got: %v", err)
	}

	reply := decodeReply(t, out)
	if reply["dgipDataHash"] != nil || reply["ipfsCid"] != nil {
		t.Errorf("reply = %v, want null hash and cid", reply)
	}
	if reply["error"] != "No DGIP log data received." {
		t.Errorf("error = %v", reply["error"])
	}
}

func TestRun_ProcessDgip_RejectsNonArray(t *testing.T) {
	for name, input := range map[string]string{
		"missing":  `{"action":"process_dgip"}`,
		"nonarray": `{"action":"process_dgip","dgipLog":"oops"}`,
	} {
		t.Run(name, func(t *testing.T) {
			app, out := testApp(t, input)
			if err := app.Run(context.Background()); err == nil {
				t.Fatal("want an error for a malformed log")
			}
			if reply := decodeReply(t, out); reply["error"] == nil {
				t.Errorf("reply = %v, want an error object", reply)
			}
		})
	}
}

func TestRun_UnknownAction(t *testing.T) {
	app, out := testApp(t, `{"action":"explode"}`)
	if err := app.Run(context.Background()); err == nil {
		t.Fatal("want an error for unknown action")
	}
	if reply := decodeReply(t, out); reply["error"] == nil {
		t.Errorf("reply = %v, want an error object", reply)
	}
}

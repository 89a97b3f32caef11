// Package pipeline runs one flight submission through the full compliance
// sequence: deterministic rules, NFZ lookup, report synthesis and, when no
// critical issue was found, canonical packaging, hashing and storage.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmpetrovs/flightguard/internal/common"
	"github.com/dmpetrovs/flightguard/internal/hashx"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/packaging"
	"github.com/dmpetrovs/flightguard/internal/validator/rules"
)

// RunState is the observable lifecycle of the orchestrator.
type RunState string

const (
	StateIdle                 RunState = "idle"
	StateRunning              RunState = "running"
	StateCompliantComplete    RunState = "compliant_complete"
	StateNoncompliantComplete RunState = "noncompliant_complete"
	StateFailed               RunState = "failed"
)

// NfzValidator performs the no-fly-zone lookup for one run. Close releases
// the underlying tool connection.
type NfzValidator interface {
	Validate(ctx context.Context, sub models.Submission) models.NfzResult
	Close() error
}

// ReportSynthesizer produces the narrative report. Implementations must not
// fail; synthesis errors surface as synthetic report text.
type ReportSynthesizer interface {
	Synthesize(ctx context.Context, sub models.Submission, findings models.RuleFindings, nfz models.NfzResult) string
}

// StorageCommitter persists canonical bytes and the hash mapping. The
// returned identifier is nil when upload failed.
type StorageCommitter interface {
	Commit(ctx context.Context, dataHash string, data []byte) *string
}

// Orchestrator executes pipeline runs one at a time. A second Run while one
// is in flight is a contract violation and is rejected, not queued.
type Orchestrator struct {
	running sync.Mutex

	rules     *rules.Engine
	newNfz    func() NfzValidator
	synth     ReportSynthesizer
	committer StorageCommitter
	logger    logging.Logger

	stateMu sync.Mutex
	state   RunState
}

// NewOrchestrator wires the pipeline stages. newNfz is called once per run;
// the returned validator is closed when the run finishes on any path.
func NewOrchestrator(engine *rules.Engine, newNfz func() NfzValidator, synth ReportSynthesizer, committer StorageCommitter, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		rules:     engine,
		newNfz:    newNfz,
		synth:     synth,
		committer: committer,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() RunState {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s RunState) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// Run executes the pipeline for one submission. The only possible error is
// common.ErrValidationInProgress on re-entry; every processing failure is
// folded into the returned outcome instead.
func (o *Orchestrator) Run(ctx context.Context, sub models.Submission) (*models.PipelineOutcome, error) {
	if !o.running.TryLock() {
		return nil, common.ErrValidationInProgress
	}
	defer o.running.Unlock()

	o.setState(StateRunning)
	logger := o.logger.With("run_id", uuid.NewString())

	outcome := o.run(ctx, logger, sub)

	switch {
	case outcome.Error != "" && !outcome.IsCriticallyCompliant && outcome.RawValidationData == nil:
		o.setState(StateFailed)
	case outcome.IsCriticallyCompliant:
		o.setState(StateCompliantComplete)
	default:
		o.setState(StateNoncompliantComplete)
	}
	return outcome, nil
}

func (o *Orchestrator) run(ctx context.Context, logger logging.Logger, sub models.Submission) (outcome *models.PipelineOutcome) {
	nfzValidator := o.newNfz()
	defer func() {
		if err := nfzValidator.Close(); err != nil {
			logger.Warn(ctx, "error releasing NFZ connection", "err", err)
		}
	}()

	var messages []string
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "unexpected error during validation run", "panic", r)
			msg := fmt.Sprintf("Unexpected processing error: %v", r)
			outcome = &models.PipelineOutcome{
				ComplianceMessages:    append([]string{msg}, messages...),
				Error:                 msg,
				IsCriticallyCompliant: false,
			}
		}
	}()

	logger.Info(ctx, "running deterministic checks")
	findings := o.rules.Check(sub)

	logger.Info(ctx, "running NFZ validation")
	nfzResult := nfzValidator.Validate(ctx, sub)

	critical := findings.HasIssues() || nfzResult.IsCritical()

	logger.Info(ctx, "synthesizing compliance report", "critical", critical)
	reportText := o.synth.Synthesize(ctx, sub, findings, nfzResult)

	messages = assembleMessages(reportText, findings, nfzResult, critical)
	raw := &models.RawValidationData{DeterministicChecks: findings, NfzValidation: nfzResult}

	if critical {
		logger.Info(ctx, "critical issues found, skipping packaging and storage")
		return &models.PipelineOutcome{
			ComplianceMessages:    messages,
			IsCriticallyCompliant: false,
			Error:                 "Validation reported critical issues. Data not stored.",
			RawValidationData:     raw,
		}
	}

	logger.Info(ctx, "no critical issues, packaging and storing")
	pkg := packaging.Build(sub, findings, nfzResult, reportText)
	data, err := packaging.Serialize(pkg)
	if err != nil {
		// Packager output not serializing is a programming error.
		panic(fmt.Sprintf("serialize compliance package: %v", err))
	}

	dataHash := hashx.Keccak256Hex(data)
	logger.Info(ctx, "compliance package hashed", "data_hash", dataHash)

	cid := o.committer.Commit(ctx, dataHash, data)

	return &models.PipelineOutcome{
		ComplianceMessages:    messages,
		DataHash:              &dataHash,
		IpfsCid:               cid,
		IsCriticallyCompliant: true,
		RawValidationData:     raw,
	}
}

// ruleCategories fixes the order in which finding categories are reported.
var ruleCategories = []string{models.CheckFlightDate, models.CheckFlightTimes, models.CheckDroneWeight}

func assembleMessages(reportText string, findings models.RuleFindings, nfzResult models.NfzResult, critical bool) []string {
	messages := []string{reportText}
	if !critical {
		return messages
	}

	for _, category := range ruleCategories {
		if msgs := findings[category]; len(msgs) > 0 {
			messages = append(messages, fmt.Sprintf("Deterministic Check Issue (%s): %s", category, strings.Join(msgs, "; ")))
		}
	}

	if nfzResult.Status != models.NfzSuccess {
		detail := nfzResult.Message
		if detail == "" {
			detail = "Unknown NFZ error details."
		}
		messages = append(messages, fmt.Sprintf("NFZ Validation Status: %s. Details: %s", nfzResult.Status, detail))
	}
	return messages
}

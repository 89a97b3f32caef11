package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
)

// AnswerMarker separates the model's reasoning from the report proper.
const AnswerMarker = "Answer:"

const promptTemplate = `
Given the following flight details, deterministic check results, and No-Fly Zone validation findings,
synthesize a comprehensive report detailing all potential compliance issues.
Present the findings as a single list of bullet points.
If no critical issues are found based on the deterministic and NFZ validation information, state that the flight appears compliant.

Flight Details:
%s

Deterministic Check Results:
%s

No-Fly Zone Validation Results:
%s

Please analyze all the above information and provide a comprehensive compliance report that:
1. Incorporates findings from all validation sources
2. Prioritizes critical safety and regulatory issues
3. Provides clear, actionable recommendations (if any issues)
4. Notes any conflicting or ambiguous findings
5. Highlights any validation errors or missing information encountered by the validators.

Structure your response with 'Answer:' followed by the comprehensive report.
`

// Synthesizer produces the narrative report for one pipeline run.
type Synthesizer struct {
	gen    Generator
	logger logging.Logger
}

func NewSynthesizer(gen Generator, logger logging.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, logger: logger}
}

// BuildPrompt renders the prompt with all three result sets pretty-printed.
func BuildPrompt(sub models.Submission, findings models.RuleFindings, nfz models.NfzResult) string {
	return fmt.Sprintf(promptTemplate, indented(sub), indented(findings), indented(nfz.AsMap()))
}

func indented(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Synthesize runs one synthesis round-trip and returns the report text. Any
// failure yields a synthetic error report; the error path never propagates.
func (s *Synthesizer) Synthesize(ctx context.Context, sub models.Submission, findings models.RuleFindings, nfz models.NfzResult) string {
	resp, err := s.gen.Generate(ctx, BuildPrompt(sub, findings, nfz))
	if err != nil {
		s.logger.Error(ctx, "report synthesis failed", "err", err)
		return fmt.Sprintf("Error during AI analysis: %v", err)
	}
	return ExtractAnswer(resp)
}

// ExtractAnswer returns everything after the first "Answer:" marker,
// trimmed. Without a marker the whole trimmed response is the report.
func ExtractAnswer(text string) string {
	if _, after, found := strings.Cut(text, AnswerMarker); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(text)
}

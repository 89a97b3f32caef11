// Package models defines the data shapes that flow through the compliance
// pipeline: the raw submission, rule findings, NFZ lookup results, the
// canonical compliance package and the terminal pipeline outcome.
package models

// Submission is a raw flight submission as decoded from JSON. No field is
// required to exist; absence is a checkable condition, not a parse error.
type Submission map[string]any

// Field returns the raw value for key, or nil when absent.
func (s Submission) Field(key string) any {
	if s == nil {
		return nil
	}
	return s[key]
}

// Submission field names used by the pipeline.
const (
	FieldDroneName         = "droneName"
	FieldDroneModel        = "droneModel"
	FieldDroneType         = "droneType"
	FieldSerialNumber      = "serialNumber"
	FieldWeight            = "weight"
	FieldFlightPurpose     = "flightPurpose"
	FieldFlightDescription = "flightDescription"
	FieldFlightDate        = "flightDate"
	FieldStartTime         = "startTime"
	FieldEndTime           = "endTime"
	FieldDayNightOperation = "dayNightOperation"
	FieldFlightAreaCenter  = "flightAreaCenter"
	FieldFlightAreaRadius  = "flightAreaRadius"
	FieldFlightAreaMaxHgt  = "flightAreaMaxHeight"
	FieldAdditionalNotes   = "additionalNotes"
)

// Rule check categories. Findings are grouped under these keys.
const (
	CheckFlightDate  = "flight_date"
	CheckFlightTimes = "flight_times"
	CheckDroneWeight = "drone_weight"
)

// RuleFindings maps a rule category to an ordered list of human-readable
// issue strings. An empty list means the category passed. Order is insertion
// order (first-detected-first).
type RuleFindings map[string][]string

// NewRuleFindings returns findings with all categories present and empty.
func NewRuleFindings() RuleFindings {
	return RuleFindings{
		CheckFlightDate:  {},
		CheckFlightTimes: {},
		CheckDroneWeight: {},
	}
}

// HasIssues reports whether any category contains at least one finding.
func (f RuleFindings) HasIssues() bool {
	for _, msgs := range f {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// NfzStatus tags the outcome of the no-fly-zone lookup.
type NfzStatus string

const (
	NfzSuccess            NfzStatus = "success"
	NfzToolError          NfzStatus = "tool_error"
	NfzCommunicationError NfzStatus = "communication_error"
	NfzSkipped            NfzStatus = "skipped"
)

// NfzResult is the classified response of the external NFZ lookup. Only
// NfzSuccess is non-critical; every other status blocks packaging.
type NfzResult struct {
	Status  NfzStatus `json:"status"`
	Payload any       `json:"validationResult,omitempty"`
	Message string    `json:"message,omitempty"`
}

// IsCritical reports whether this result blocks the compliant path.
func (r NfzResult) IsCritical() bool {
	return r.Status != NfzSuccess
}

// AsMap renders the result as a plain map for canonical serialization.
// Payload values must already be flattened to maps/slices/primitives.
func (r NfzResult) AsMap() map[string]any {
	m := map[string]any{"status": string(r.Status)}
	if r.Payload != nil {
		m["validationResult"] = r.Payload
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return m
}

// RawValidationData carries the unprocessed check results inside an outcome
// for diagnostics.
type RawValidationData struct {
	DeterministicChecks RuleFindings `json:"deterministic_checks"`
	NfzValidation       NfzResult    `json:"nfz_validation"`
}

// PipelineOutcome is the terminal record of one pipeline run.
//
// DataHash and IpfsCid are nil on every critical or failed path; IpfsCid may
// also be nil on success because content-store upload is best-effort.
type PipelineOutcome struct {
	ComplianceMessages    []string           `json:"compliance_messages"`
	DataHash              *string            `json:"dataHash"`
	IpfsCid               *string            `json:"ipfsCid"`
	IsCriticallyCompliant bool               `json:"is_critically_compliant"`
	Error                 string             `json:"error,omitempty"`
	RawValidationData     *RawValidationData `json:"raw_validation_data,omitempty"`
}

// Mapping is one row of the hash→content-identifier table.
type Mapping struct {
	DataHash string `json:"dataHash"`
	IpfsCid  string `json:"ipfsCid"`
}

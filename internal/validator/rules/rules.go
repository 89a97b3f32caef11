// Package rules implements the deterministic part of flight compliance
// checking: date, time-window and weight checks against fixed policy
// constants. The engine is pure — findings are advisory strings, and bad
// input data never produces an error.
package rules

import (
	"fmt"
	"time"

	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/normalize"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Operational window for flights, inclusive on both ends.
var (
	windowOpen  = mustClock("09:00")
	windowClose = mustClock("17:30")
)

// Policy weight bounds in grams.
const (
	MaxWeightGrams = 25000
	MinWeightGrams = 50
)

// Engine runs the deterministic checks. Now is injectable for tests and
// defaults to time.Now.
type Engine struct {
	Now func() time.Time
}

// NewEngine returns an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Check evaluates all rule categories against the submission and returns the
// findings. Every category key is always present in the result.
func (e *Engine) Check(sub models.Submission) models.RuleFindings {
	findings := models.NewRuleFindings()

	e.checkFlightDate(sub, findings)
	e.checkFlightTimes(sub, findings)
	e.checkDroneWeight(sub, findings)

	return findings
}

func (e *Engine) checkFlightDate(sub models.Submission, findings models.RuleFindings) {
	raw := normalize.String(sub.Field(models.FieldFlightDate))
	if raw == "" {
		findings[models.CheckFlightDate] = append(findings[models.CheckFlightDate],
			"Flight date is missing.")
		return
	}

	flightDate, err := time.Parse(dateLayout, raw)
	if err != nil {
		findings[models.CheckFlightDate] = append(findings[models.CheckFlightDate],
			fmt.Sprintf("Invalid date format: %s. Expected YYYY-MM-DD.", raw))
		return
	}

	y, m, d := e.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if flightDate.Before(today) {
		findings[models.CheckFlightDate] = append(findings[models.CheckFlightDate],
			fmt.Sprintf("Flight date %s is in the past.", raw))
	}
}

func (e *Engine) checkFlightTimes(sub models.Submission, findings models.RuleFindings) {
	startRaw := normalize.String(sub.Field(models.FieldStartTime))
	endRaw := normalize.String(sub.Field(models.FieldEndTime))

	if startRaw == "" || endRaw == "" {
		if startRaw == "" {
			findings[models.CheckFlightTimes] = append(findings[models.CheckFlightTimes],
				"Start time is missing.")
		}
		if endRaw == "" {
			findings[models.CheckFlightTimes] = append(findings[models.CheckFlightTimes],
				"End time is missing.")
		}
		return
	}

	start, errStart := time.Parse(timeLayout, startRaw)
	end, errEnd := time.Parse(timeLayout, endRaw)
	if errStart != nil || errEnd != nil {
		findings[models.CheckFlightTimes] = append(findings[models.CheckFlightTimes],
			"Invalid time format. Expected HH:MM for both start and end times.")
		return
	}

	if !end.After(start) {
		findings[models.CheckFlightTimes] = append(findings[models.CheckFlightTimes],
			fmt.Sprintf("End time %s must be after start time %s.", endRaw, startRaw))
	}

	// The flight must lie entirely within the operational window.
	if outsideWindow(start) || outsideWindow(end) {
		findings[models.CheckFlightTimes] = append(findings[models.CheckFlightTimes],
			fmt.Sprintf("Flight times (%s - %s) must be between 09:00 and 17:30.", startRaw, endRaw))
	}
}

func (e *Engine) checkDroneWeight(sub models.Submission, findings models.RuleFindings) {
	raw := sub.Field(models.FieldWeight)
	if raw == nil {
		findings[models.CheckDroneWeight] = append(findings[models.CheckDroneWeight],
			"Drone weight is missing.")
		return
	}

	weight := normalize.Float(raw)
	if weight == nil {
		findings[models.CheckDroneWeight] = append(findings[models.CheckDroneWeight],
			fmt.Sprintf("Invalid weight format: %v. Expected a number.", raw))
		return
	}

	if *weight > MaxWeightGrams {
		findings[models.CheckDroneWeight] = append(findings[models.CheckDroneWeight],
			fmt.Sprintf("Drone weight (%vg) exceeds %dg (25kg). Additional regulations may apply.", *weight, MaxWeightGrams))
	}
	if *weight < MinWeightGrams {
		findings[models.CheckDroneWeight] = append(findings[models.CheckDroneWeight],
			fmt.Sprintf("Drone weight (%vg) is below minimum allowed (%dg).", *weight, MinWeightGrams))
	}
}

func outsideWindow(t time.Time) bool {
	return t.Before(windowOpen) || t.After(windowClose)
}

func mustClock(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

package nfz

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/normalize"
)

// DefaultSearchRadiusMeters is assumed when the submission carries no
// flightAreaRadius.
const DefaultSearchRadiusMeters = 5

// Adapter transforms a submission into a lookup request, invokes the
// external tool and classifies the response into a models.NfzResult.
type Adapter struct {
	invoker Invoker
	logger  logging.Logger
}

func NewAdapter(invoker Invoker, logger logging.Logger) *Adapter {
	return &Adapter{invoker: invoker, logger: logger}
}

// BuildRequest derives the lookup request from a submission. The second
// return value is false when the flight-area center is missing or in
// neither supported shape, in which case no lookup can be performed.
func (a *Adapter) BuildRequest(sub models.Submission) (Request, bool) {
	center, ok := normalize.ParseCenter(sub.Field(models.FieldFlightAreaCenter))
	if !ok {
		return Request{}, false
	}

	radiusMeters := normalize.FloatOr(sub.Field(models.FieldFlightAreaRadius), DefaultSearchRadiusMeters)

	return Request{
		Coordinates: Coordinates{
			Latitude:       center.Latitude,
			Longitude:      center.Longitude,
			Altitude:       normalize.FloatOr(sub.Field(models.FieldFlightAreaMaxHgt), 0),
			ReferenceDatum: DatumAMSL,
		},
		SearchRadius: normalize.Round3(radiusMeters / 1000),
	}, true
}

// Validate performs the NFZ lookup for the submission.
//
// Classification:
//   - missing/unusable center          → skipped (critical: NFZ cannot be cleared)
//   - tool-reported error              → tool_error
//   - transport/communication failure  → communication_error
//   - anything else                    → success, payload flattened
func (a *Adapter) Validate(ctx context.Context, sub models.Submission) models.NfzResult {
	req, ok := a.BuildRequest(sub)
	if !ok {
		return models.NfzResult{
			Status:  models.NfzSkipped,
			Message: "flightAreaCenter is missing or not in expected string/object format. Cannot perform NFZ validation.",
		}
	}

	a.logger.Info(ctx, "calling NFZ lookup tool",
		"latitude", req.Coordinates.Latitude,
		"longitude", req.Coordinates.Longitude,
		"search_radius_km", req.SearchRadius,
	)

	payload, err := a.invoker.CallValidate(ctx, req)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return models.NfzResult{
				Status:  models.NfzToolError,
				Message: fmt.Sprintf("NFZ tool reported an error: %s", toolErr.Message),
			}
		}
		return models.NfzResult{
			Status:  models.NfzCommunicationError,
			Message: fmt.Sprintf("NFZ tool call or communication error: %v", err),
		}
	}

	if msg, isErr := ErrorText(payload); isErr {
		return models.NfzResult{
			Status:  models.NfzToolError,
			Message: fmt.Sprintf("NFZ tool reported an error: %s", msg),
		}
	}

	return models.NfzResult{
		Status:  models.NfzSuccess,
		Payload: Flatten(payload),
	}
}

// Close releases the underlying tool connection.
func (a *Adapter) Close() error {
	return a.invoker.Close()
}

// Package packaging assembles the compliance package and produces its
// canonical serialization, the input to the content hash.
package packaging

import (
	"github.com/dmpetrovs/flightguard/internal/jsonx"
	"github.com/dmpetrovs/flightguard/internal/validator/models"
	"github.com/dmpetrovs/flightguard/internal/validator/normalize"
)

// Build creates the compliance package: every submission field in its
// normalized form plus all validation results nested under
// validation_results. The result is a plain map tree so its canonical
// serialization is fully determined by content.
func Build(sub models.Submission, findings models.RuleFindings, nfz models.NfzResult, reportText string) map[string]any {
	var lat, lng *float64
	if center, ok := normalize.ParseCenter(sub.Field(models.FieldFlightAreaCenter)); ok {
		lat = normalize.Float(center.Latitude)
		lng = normalize.Float(center.Longitude)
	}

	checks := make(map[string]any, len(findings))
	for category, msgs := range findings {
		checks[category] = msgs
	}

	return map[string]any{
		"flight_data": map[string]any{
			models.FieldDroneName:         normalize.String(sub.Field(models.FieldDroneName)),
			models.FieldDroneModel:        normalize.String(sub.Field(models.FieldDroneModel)),
			models.FieldDroneType:         normalize.String(sub.Field(models.FieldDroneType)),
			models.FieldSerialNumber:      normalize.String(sub.Field(models.FieldSerialNumber)),
			models.FieldWeight:            floatOrNil(sub.Field(models.FieldWeight)),
			models.FieldFlightPurpose:     normalize.String(sub.Field(models.FieldFlightPurpose)),
			models.FieldFlightDescription: normalize.String(sub.Field(models.FieldFlightDescription)),
			models.FieldFlightDate:        normalize.String(sub.Field(models.FieldFlightDate)),
			models.FieldStartTime:         normalize.String(sub.Field(models.FieldStartTime)),
			models.FieldEndTime:           normalize.String(sub.Field(models.FieldEndTime)),
			models.FieldDayNightOperation: normalize.String(sub.Field(models.FieldDayNightOperation)),
			models.FieldFlightAreaCenter: map[string]any{
				"latitude":  ptrOrNil(lat),
				"longitude": ptrOrNil(lng),
			},
			models.FieldFlightAreaRadius: floatOrNil(sub.Field(models.FieldFlightAreaRadius)),
			models.FieldFlightAreaMaxHgt: floatOrNil(sub.Field(models.FieldFlightAreaMaxHgt)),
			models.FieldAdditionalNotes:  normalize.String(sub.Field(models.FieldAdditionalNotes)),
		},
		"validation_results": map[string]any{
			"deterministic_checks": checks,
			"nfz_validation":       nfz.AsMap(),
			"ai_report":            reportText,
		},
	}
}

// Serialize produces the canonical bytes of a package built by Build.
func Serialize(pkg map[string]any) ([]byte, error) {
	return jsonx.MarshalCanonical(pkg)
}

// floatOrNil unwraps the normalized float so the serialized form is a bare
// number or null, never a pointer.
func floatOrNil(v any) any {
	return ptrOrNil(normalize.Float(v))
}

func ptrOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

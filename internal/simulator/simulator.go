// Package simulator generates synthetic telemetry for a planned flight: a
// fixed number of points on a circular path inside the declared flight area,
// with mocked altitude, speed, heading and battery profiles.
package simulator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dmpetrovs/flightguard/internal/logging"
)

// PointCount is the fixed number of telemetry points per simulated flight.
const PointCount = 10

// metersPerDegree approximates one degree of latitude.
const metersPerDegree = 111000.0

// Params describes the planned flight being simulated.
type Params struct {
	CenterLat    float64
	CenterLng    float64
	RadiusMeters float64
	Start        time.Time
	End          time.Time
}

// Point is one telemetry log entry.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Battery   float64 `json:"battery"`
}

// Generate produces the telemetry track for p. A zero-duration flight yields
// a single grounded point at the center; a negative duration yields an empty
// track.
func Generate(ctx context.Context, p Params, logger logging.Logger) []Point {
	duration := p.End.Sub(p.Start)

	if duration < 0 {
		logger.Error(ctx, "end time must be after start time for simulation")
		return []Point{}
	}
	if duration == 0 {
		return []Point{{
			Timestamp: p.Start.Format(time.RFC3339),
			Latitude:  round6(p.CenterLat),
			Longitude: round6(p.CenterLng),
			Altitude:  0,
			Speed:     0,
			Heading:   0,
			Battery:   100,
		}}
	}

	interval := duration / time.Duration(PointCount-1)
	radiusDegrees := p.RadiusMeters / metersPerDegree

	points := make([]Point, 0, PointCount)
	for i := 0; i < PointCount; i++ {
		ts := p.Start.Add(time.Duration(i) * interval)
		if i == PointCount-1 {
			ts = p.End
		}

		progress := float64(i) / float64(PointCount-1)
		angle := progress * 2 * math.Pi

		latOffset := radiusDegrees * math.Cos(angle)
		lngOffset := radiusDegrees * math.Sin(angle) / math.Cos(p.CenterLat*math.Pi/180)

		heading := math.Atan2(lngOffset, latOffset) * 180 / math.Pi
		heading = math.Mod(heading+90+360, 360)

		points = append(points, Point{
			Timestamp: ts.Format(time.RFC3339),
			Latitude:  round6(p.CenterLat + latOffset),
			Longitude: round6(p.CenterLng + lngOffset),
			Altitude:  round2(altitudeAt(progress)),
			Speed:     round2(math.Max(0, 15+math.Sin(progress*math.Pi)*10)),
			Heading:   round2(heading),
			Battery:   round2(math.Max(0, 95-progress*80)),
		})
	}

	return points
}

// altitudeAt models ascend to cruise, level cruise capped at 120 m, and
// descend back down.
func altitudeAt(progress float64) float64 {
	var alt float64
	switch {
	case progress < 0.2:
		alt = 10 + 110*progress/0.2
	case progress < 0.8:
		alt = 120 + 10*math.Sin((progress-0.2)/0.6*math.Pi)
		alt = math.Min(alt, 120)
	default:
		alt = 120 - 110*(progress-0.8)/0.2
	}
	return math.Max(0, alt)
}

// Window combines a flight date (YYYY-MM-DD) with HH:MM start and end times.
func Window(flightDate, startTime, endTime string) (time.Time, time.Time, error) {
	const layout = "2006-01-02T15:04:05"
	start, err := time.Parse(layout, fmt.Sprintf("%sT%s:00", flightDate, startTime))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(layout, fmt.Sprintf("%sT%s:00", flightDate, endTime))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

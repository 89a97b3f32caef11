package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmpetrovs/flightguard/internal/buildinfo"
	"github.com/dmpetrovs/flightguard/internal/logging"
	"github.com/dmpetrovs/flightguard/internal/simulator"
)

type input struct {
	FlightAreaCenter struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"flightAreaCenter"`
	FlightAreaRadius float64 `json:"flightAreaRadius"`
	FlightDate       string  `json:"flightDate"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
}

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	var in input
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		fmt.Fprintf(os.Stderr, "error reading flight parameters from stdin: %v\n", err)
		os.Exit(1)
	}

	start, end, err := simulator.Window(in.FlightDate, in.StartTime, in.EndTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid flight window: %v\n", err)
		os.Exit(1)
	}

	points := simulator.Generate(ctx, simulator.Params{
		CenterLat:    in.FlightAreaCenter.Latitude,
		CenterLng:    in.FlightAreaCenter.Longitude,
		RadiusMeters: in.FlightAreaRadius,
		Start:        start,
		End:          end,
	}, logger)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(points); err != nil {
		fmt.Fprintf(os.Stderr, "error writing telemetry: %v\n", err)
		os.Exit(1)
	}

}

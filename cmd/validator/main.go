package main

import (
	"context"
	"log"
	"os"

	"github.com/dmpetrovs/flightguard/internal/buildinfo"
	"github.com/dmpetrovs/flightguard/internal/validator"
	"github.com/dmpetrovs/flightguard/internal/validator/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := validator.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}

package config

import (
	"flag"
	"os"

	"github.com/dmpetrovs/flightguard/internal/flagx"
)

// parseFlags populates selected validator Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   database DSN (sqlite file path or postgres:// URL)
//	-n string   NFZ tool server command line
//	-m string   text-synthesis model name
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string   S3 object key prefix
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n", "-m", "-u", "-p", "-b", "-g", "-e", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.NfzServerCommand, "n", config.NfzServerCommand, "NFZ tool server command")
	fs.StringVar(&config.ReportModel, "m", config.ReportModel, "text-synthesis model")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3KeyPrefix, "k", config.S3KeyPrefix, "S3 object key prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

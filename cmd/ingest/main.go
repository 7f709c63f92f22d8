// Command ingest parses a statement file locally and prints the extracted
// transaction candidates as JSON, without touching the database. Useful for
// checking what an upload would import.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/dmoraes/driver-finance/internal/logger"
	"github.com/dmoraes/driver-finance/internal/statement"
)

func main() {
	log := logger.New()

	var (
		file   = flag.String("file", "", "Path to the statement file (required)")
		source = flag.String("source", "", "Platform that issued the statement (uber, 99, indrive); detected when empty")
		format = flag.String("format", "", "File format (csv, xlsx, pdf); guessed from the extension when empty")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read statement")
	}

	f := statement.ParseFormat(*format)
	if f == "" {
		f = statement.FormatFromFilename(*file)
	}

	pipe := statement.New(statement.DefaultConfig())
	candidates, err := pipe.Ingest(data, statement.ParsePlatform(*source), f)
	if err != nil {
		log.Fatal().Err(err).Msg("Statement could not be read")
	}

	log.Info().
		Str("file", *file).
		Str("format", string(f)).
		Int("candidates", len(candidates)).
		Msg("Statement parsed")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(candidates); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode candidates")
	}
}

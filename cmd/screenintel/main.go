// Command screenintel runs the local screen-intelligence pipeline: it
// turns a captured screenshot into a typed, spatially-indexed,
// semantically-embedded ScreenState, and answers natural-language
// element queries against the resulting index.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/polzovatel/screenintel/internal/config"
)

func main() {
	_ = godotenv.Load()

	logger := newLogger()

	cfgPath := os.Getenv("SCREENINTEL_CONFIG")
	if cfgPath == "" {
		cfgPath = "screenintel.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfgPath).Msg("failed to load config, using defaults")
		cfg = config.Default()
	}

	root := newRootCmd(cfg, logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

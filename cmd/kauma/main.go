// Command kauma runs a JSON-described batch of cryptanalytic actions
// and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kauma-lab/kauma/internal/batch"
)

func newRootCmd(logger *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kauma <input.json>",
		Short:         "Run a batch of GF(2^128)/GCM cryptanalytic actions described as JSON",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logger, args[0], os.Stdout)
		},
	}
	return cmd
}

func run(ctx context.Context, logger *zerolog.Logger, path string, stdout *os.File) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	var in batch.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing input JSON: %w", err)
	}
	logger.Info().Int("testcases", len(in.Testcases)).Msg("loaded batch")

	start := time.Now()
	out, err := batch.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("batch complete")

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	root := newRootCmd(&logger)
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("kauma failed")
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/export"
	"github.com/bankstream/bankstream/internal/identity"
	"github.com/bankstream/bankstream/internal/ingest"
	"github.com/bankstream/bankstream/internal/llm"
	"github.com/bankstream/bankstream/internal/logger"
	"github.com/bankstream/bankstream/internal/record"
	"github.com/bankstream/bankstream/internal/stream"
)

func newParseCommand() *cobra.Command {
	var model string
	var output string

	cmd := &cobra.Command{
		Use:   "parse <statement.pdf>",
		Short: "Parse one statement PDF and print transactions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args[0], model, output)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Gemini model name (defaults to "+llm.DefaultModel+")")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")

	return cmd
}

func runParse(ctx context.Context, path, model, output string) error {
	log := logger.New()

	if err := ingest.ValidateUpload(path, ""); err != nil {
		return err
	}

	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}

	streamer := llm.NewGemini(model)
	src, err := streamer.StreamStatement(ctx, pdfBytes)
	if err != nil {
		return fmt.Errorf("submitting statement: %w", err)
	}

	// Same pipeline as the server, run synchronously: reassemble chunks
	// into lines, decode, assign ids. Rejected lines are logged and skipped.
	asm := stream.New()
	asg := identity.New(nil)
	var txs []domain.Transaction
	rejected := 0

	ingestLines := func(lines []string) {
		for _, line := range lines {
			rec, err := record.Decode(line)
			if err != nil {
				rejected++
				log.Warn().Err(err).Msg("record line rejected")
				continue
			}
			if rec == nil {
				continue
			}
			txs = append(txs, asg.Assign(*rec))
		}
	}

	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("streaming extraction: %w", err)
		}
		ingestLines(asm.Push(chunk))
	}
	if line, ok := asm.Flush(); ok {
		ingestLines([]string{line})
	}

	log.Info().Int("accepted", len(txs)).Int("rejected", rejected).Msg("extraction finished")

	out := os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, txs)
}

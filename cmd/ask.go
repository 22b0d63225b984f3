package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calbot/internal/assistant"
)

func newAskCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Run one request through the assistant",
		Long: `Run one plain English request through the assistant and print the reply.

Examples:
  calbot ask "Book a meeting tomorrow afternoon"
  calbot ask --json "Am I free on Friday from 3 to 5?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			return runAsk(cmd.Context(), cmd.OutOrStdout(), a.sc.Pipeline(), strings.Join(args, " "), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full request state as JSON")

	return cmd
}

func runAsk(ctx context.Context, w io.Writer, p *assistant.Pipeline, input string, jsonOutput bool) error {
	state := p.Run(ctx, input)

	if !jsonOutput {
		_, err := fmt.Fprintln(w, state.Response)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

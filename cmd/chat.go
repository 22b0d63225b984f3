package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calbot/internal/assistant"
)

const chatGreeting = `Hi, I can check your calendar and book meetings.
Try "Book a meeting tomorrow afternoon" or "Am I free on Friday from 3 to 5?".
Type "history" to see the conversation, "exit" to quit.`

// Speakers in the transcript.
const (
	speakerUser      = "you"
	speakerAssistant = "calbot"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scheduling chat",
		Long: `Start an interactive chat with the scheduling assistant. Every line is
handled as a separate request; the conversation is kept for the session
and printed with "history".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			session := newChatSession(a.sc.Pipeline(), cmd.InOrStdin(), cmd.OutOrStdout())
			return session.Run(cmd.Context())
		},
	}
}

// chatTurn is one line of the transcript.
type chatTurn struct {
	Speaker string
	Text    string
}

// chatSession owns the transcript. The pipeline itself keeps no state
// between requests.
type chatSession struct {
	pipeline   *assistant.Pipeline
	in         *bufio.Scanner
	out        io.Writer
	transcript []chatTurn
}

func newChatSession(p *assistant.Pipeline, in io.Reader, out io.Writer) *chatSession {
	return &chatSession{
		pipeline: p,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run reads requests until EOF, "exit" or ctx is done.
func (s *chatSession) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, chatGreeting)

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(s.in.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "history":
			s.printHistory()
			continue
		}

		state := s.pipeline.Run(ctx, line)
		s.transcript = append(s.transcript,
			chatTurn{Speaker: speakerUser, Text: line},
			chatTurn{Speaker: speakerAssistant, Text: state.Response})
		fmt.Fprintln(s.out, state.Response)
	}
}

func (s *chatSession) printHistory() {
	if len(s.transcript) == 0 {
		fmt.Fprintln(s.out, "No messages yet.")
		return
	}
	for _, turn := range s.transcript {
		fmt.Fprintf(s.out, "%s: %s\n", turn.Speaker, turn.Text)
	}
}

// Transcript returns the conversation so far.
func (s *chatSession) Transcript() []chatTurn {
	return s.transcript
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/patterns"
	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns [conversation]",
		Short: "Analyze activity and mood patterns",
		Long: "Report when the user writes, how their mood moves between messages and how the " +
			"sentiment of recent messages is trending.",
		Args: cobra.ExactArgs(1),
		Run:  runPatterns,
	}

	RootCmd.AddCommand(cmd)
}

func runPatterns(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	if _, err := s.GetConversation(ctx, args[0]); err != nil {
		exitErr("patterns", err)
	}
	msgs, err := s.Messages(ctx, store.MessagesParams{ConversationID: args[0]})
	if err != nil {
		exitErr("patterns", err)
	}

	loc, err := settings().Location()
	if err != nil {
		exitErr("timezone", err)
	}
	logger := newLogger()
	rep, err := patterns.Analyze(ctx, args[0], msgs, patterns.Options{
		Analyzer: newAnalyzer(logger),
		Crisis:   loadAnalysis().Lexicon,
		Location: loc,
	})
	if err != nil {
		exitErr("patterns", err)
	}

	emit(rep, func(w io.Writer) {
		act := rep.Activity
		fmt.Fprintf(w, "%s: %d messages, %s\n", rep.ConversationID, act.TotalMessages, act.Frequency)
		for _, h := range act.ActiveHours {
			fmt.Fprintf(w, "  hour %02d: %d\n", h.Hour, h.Count)
		}
		for _, in := range rep.Mood.Insights {
			fmt.Fprintf(w, "  mood: %s\n", in)
		}
		for _, in := range rep.Insights {
			fmt.Fprintf(w, "  [%s] %s\n", in.Type, in.Message)
		}
	})
}

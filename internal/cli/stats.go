package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	emit(stats, func(w io.Writer) {
		fmt.Fprintf(w, "db:            %s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Fprintf(w, "conversations: %d\n", stats.Conversations)
		fmt.Fprintf(w, "messages:      %d (%d from users)\n", stats.Messages, stats.UserMessages)
		fmt.Fprintf(w, "assessments:   %d\n", stats.Assessments)
		for _, l := range stats.Levels {
			fmt.Fprintf(w, "  %-9s %d\n", l.Level, l.Count)
		}
	})
}

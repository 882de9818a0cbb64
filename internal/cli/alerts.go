package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List stored assessments by level",
		Long:  "List saved assessments, newest first. By default only high and critical ones.",
		Run:   runAlerts,
	}

	cmd.Flags().StringP("conversation", "c", "", "Filter by conversation")
	cmd.Flags().String("level", "high,critical", "Comma-separated levels (empty for all)")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("body", false, "Include the full assessment")

	RootCmd.AddCommand(cmd)
}

func runAlerts(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conversation")
	levels, _ := cmd.Flags().GetString("level")
	limit, _ := cmd.Flags().GetInt("limit")
	withBody, _ := cmd.Flags().GetBool("body")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	recs, err := s.ListAssessments(cmd.Context(), store.AssessmentListParams{
		ConversationID: conv,
		Levels:         splitList(levels),
		Limit:          limit,
	})
	if err != nil {
		exitErr("alerts", err)
	}
	if !withBody {
		for i := range recs {
			recs[i].Body = nil
		}
	}

	emit(recs, func(w io.Writer) {
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%-8s\t%.2f\n", r.CreatedAt.Format(time.RFC3339), r.ConversationID, r.Level, r.Score)
		}
	})
}

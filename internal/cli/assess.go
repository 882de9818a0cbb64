package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/assess"
	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "assess [conversation]",
		Short: "Assess the risk of a conversation",
		Long: "Score every user message of a conversation, detect trends and escalation patterns " +
			"and derive a risk level with recommendations.",
		Args: cobra.ExactArgs(1),
		Run:  runAssess,
	}

	cmd.Flags().Bool("save", false, "Store the assessment")
	cmd.Flags().Bool("scores", false, "Include per-message scores")

	RootCmd.AddCommand(cmd)
}

func runAssess(cmd *cobra.Command, args []string) {
	save, _ := cmd.Flags().GetBool("save")
	withScores, _ := cmd.Flags().GetBool("scores")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := assessConversation(cmd.Context(), s, newAssessor(newLogger()), args[0], save)
	if err != nil {
		exitErr("assess", err)
	}
	if !withScores {
		res.Scores = nil
	}

	emit(res, func(w io.Writer) { writeAssessment(w, res) })
}

// assessConversation loads and assesses one stored conversation, saving the
// result when save is set.
func assessConversation(ctx context.Context, s *store.SQLiteStore, a *assess.Assessor, id string, save bool) (*assess.Assessment, error) {
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.Messages(ctx, store.MessagesParams{ConversationID: conv.ID})
	if err != nil {
		return nil, err
	}

	res, err := a.Assess(ctx, *conv, msgs)
	if err != nil {
		return nil, err
	}
	if save {
		if err := saveAssessment(ctx, s, res); err != nil {
			return nil, fmt.Errorf("save assessment: %w", err)
		}
	}
	return res, nil
}

func saveAssessment(ctx context.Context, s *store.SQLiteStore, a *assess.Assessment) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.SaveAssessment(ctx, store.SaveAssessmentParams{
		ConversationID: a.ConversationID,
		Level:          a.Level.String(),
		Score:          a.MaxScore,
		Body:           body,
	})
	return err
}

func writeAssessment(w io.Writer, a *assess.Assessment) {
	if a.InsufficientData {
		fmt.Fprintf(w, "%s: insufficient data (%d messages)\n", a.ConversationID, a.MessagesAnalyzed)
		return
	}
	fmt.Fprintf(w, "%s: %s (max %.2f, recent avg %.2f, trend %s)\n",
		a.ConversationID, a.Level, a.MaxScore, a.AverageRecentScore, a.Trend.Level)
	if a.HighestRisk != nil {
		fmt.Fprintf(w, "  highest: %q\n", a.HighestRisk.Preview)
	}
	for _, r := range a.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	if a.Alert != nil {
		for _, act := range a.Alert.Actions {
			fmt.Fprintf(w, "  ! %s\n", act)
		}
		for _, c := range a.Alert.EmergencyContacts {
			fmt.Fprintf(w, "  ☎ %s\n", c)
		}
	}
}

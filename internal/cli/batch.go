package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/assess"
	"github.com/rcliao/eunoia-signals/internal/config"
	"github.com/rcliao/eunoia-signals/internal/scheduler"
	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess many conversations",
		Long: "Assess the most recent conversations in parallel and print one summary per conversation. " +
			"With --cron the batch runs on a schedule until interrupted.",
		Run: runBatch,
	}

	cmd.Flags().StringP("user", "u", "", "Only conversations of this user")
	cmd.Flags().IntP("limit", "l", 100, "Max conversations per run")
	cmd.Flags().IntP("workers", "w", 0, "Parallel assessments (default: $EUNOIA_WORKERS)")
	cmd.Flags().Bool("save", false, "Store the assessments")
	cmd.Flags().Bool("cron", false, "Run on a schedule")
	cmd.Flags().String("schedule", "", "Cron spec (default: $EUNOIA_SCHEDULE)")

	RootCmd.AddCommand(cmd)
}

type batchSummary struct {
	ConversationID   string  `json:"conversation_id"`
	Level            string  `json:"level"`
	MaxScore         float64 `json:"max_score"`
	Escalation       bool    `json:"escalation_detected"`
	Alert            bool    `json:"alert"`
	InsufficientData bool    `json:"insufficient_data,omitempty"`
}

type batchRun struct {
	store    *store.SQLiteStore
	assessor *assess.Assessor
	list     store.ListParams
	workers  int
	save     bool
	logger   *slog.Logger
}

func runBatch(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("save")
	onCron, _ := cmd.Flags().GetBool("cron")
	spec, _ := cmd.Flags().GetString("schedule")

	workers, spec = batchDefaults(settings(), workers, spec)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	logger := newLogger()
	b := &batchRun{
		store:    s,
		assessor: newAssessor(logger),
		list:     store.ListParams{UserID: user, Limit: limit},
		workers:  workers,
		save:     save,
		logger:   logger,
	}

	if !onCron {
		sums, err := b.run(cmd.Context())
		if err != nil {
			exitErr("batch", err)
		}
		emit(sums, nil)
		return
	}

	loc, err := settings().Location()
	if err != nil {
		exitErr("timezone", err)
	}
	sched, err := scheduler.New(spec, loc, func(ctx context.Context) error {
		sums, err := b.run(ctx)
		if err != nil {
			return err
		}
		// one JSON line per run
		line, _ := json.Marshal(sums)
		fmt.Println(string(line))
		return nil
	}, logger)
	if err != nil {
		exitErr("schedule", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sched.Run(ctx); err != nil {
		exitErr("schedule", err)
	}
}

// batchDefaults fills unset flag values from cfg.
func batchDefaults(cfg *config.Config, workers int, spec string) (int, string) {
	if workers <= 0 {
		workers = cfg.Workers
	}
	if spec == "" {
		spec = cfg.Schedule
	}
	return workers, spec
}

func (b *batchRun) run(ctx context.Context) ([]batchSummary, error) {
	convs, err := b.store.ListConversations(ctx, b.list)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	inputs := make([]assess.Input, 0, len(convs))
	for _, c := range convs {
		msgs, err := b.store.Messages(ctx, store.MessagesParams{ConversationID: c.ID})
		if err != nil {
			return nil, fmt.Errorf("messages of %s: %w", c.ID, err)
		}
		inputs = append(inputs, assess.Input{Conversation: c, Messages: msgs})
	}

	results, err := b.assessor.AssessAll(ctx, inputs, b.workers)
	if err != nil {
		return nil, err
	}

	sums := make([]batchSummary, 0, len(results))
	alerts := 0
	for _, a := range results {
		if b.save && !a.InsufficientData {
			if err := saveAssessment(ctx, b.store, a); err != nil {
				return nil, fmt.Errorf("save %s: %w", a.ConversationID, err)
			}
		}
		if a.Alert != nil {
			alerts++
		}
		sums = append(sums, batchSummary{
			ConversationID:   a.ConversationID,
			Level:            a.Level.String(),
			MaxScore:         a.MaxScore,
			Escalation:       a.EscalationDetected,
			Alert:            a.Alert != nil,
			InsufficientData: a.InsufficientData,
		})
	}
	b.logger.Info("batch assessed", "conversations", len(sums), "alerts", alerts)
	return sums, nil
}

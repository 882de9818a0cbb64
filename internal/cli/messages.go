package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "messages [conversation]",
		Short: "Show the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		Run:   runMessages,
	}

	cmd.Flags().String("sender", "", "Filter by sender: user or assistant")
	cmd.Flags().IntP("limit", "l", 0, "Only the latest N messages (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runMessages(cmd *cobra.Command, args []string) {
	sender, _ := cmd.Flags().GetString("sender")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if _, err := s.GetConversation(cmd.Context(), args[0]); err != nil {
		exitErr("messages", err)
	}
	msgs, err := s.Messages(cmd.Context(), store.MessagesParams{
		ConversationID: args[0],
		Sender:         model.Sender(sender),
		Limit:          limit,
	})
	if err != nil {
		exitErr("messages", err)
	}

	emit(msgs, func(w io.Writer) { writeMessages(w, msgs) })
}

func writeMessages(w io.Writer, msgs []model.Message) {
	for _, m := range msgs {
		ts := "-"
		if !m.Timestamp.IsZero() {
			ts = m.Timestamp.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s: %s\n", ts, m.ConversationID, m.Sender, m.Content)
	}
}

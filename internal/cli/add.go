package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Record a chat message",
		Long:  "Record a message in a conversation, creating the conversation if needed. Content can be a positional arg or piped via stdin.",
		Run:   runAdd,
	}

	cmd.Flags().StringP("conversation", "c", "", "Conversation id (required)")
	cmd.Flags().String("sender", "user", "Sender: user or assistant")
	cmd.Flags().String("id", "", "Message id (generated when empty)")
	cmd.Flags().String("timestamp", "", "Message time (default: now)")
	cmd.Flags().StringP("user", "u", "", "User id for a new conversation")
	cmd.Flags().String("title", "", "Title for a new conversation")

	cmd.MarkFlagRequired("conversation")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	conv, _ := cmd.Flags().GetString("conversation")
	sender, _ := cmd.Flags().GetString("sender")
	id, _ := cmd.Flags().GetString("id")
	ts, _ := cmd.Flags().GetString("timestamp")
	user, _ := cmd.Flags().GetString("user")
	title, _ := cmd.Flags().GetString("title")

	content := strings.TrimSpace(readContent(args))
	if content == "" {
		exitErr("add", fmt.Errorf("content is required (positional arg or stdin)"))
	}
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if _, err := s.EnsureConversation(cmd.Context(), store.ConversationParams{
		ID:     conv,
		UserID: user,
		Title:  title,
	}); err != nil {
		exitErr("add", err)
	}

	msg, added, err := s.AddMessage(cmd.Context(), store.MessageParams{
		ConversationID: conv,
		ID:             id,
		Sender:         model.Sender(sender),
		Content:        content,
		Timestamp:      ts,
	})
	if err != nil {
		exitErr("add", err)
	}
	if !added {
		exitErr("add", fmt.Errorf("message %s already exists in %s", msg.ID, conv))
	}

	b, _ := json.Marshal(msg)
	fmt.Println(string(b))
}

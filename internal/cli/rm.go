package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [conversation]",
		Short: "Delete a conversation",
		Long:  "Delete a conversation with its messages and stored assessments. Irreversible.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Rm(cmd.Context(), store.RmParams{ConversationID: args[0]}); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"conversation":%q}`+"\n", args[0])
}

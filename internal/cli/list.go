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
		Use:   "list",
		Short: "List conversations",
		Run:   runList,
	}

	cmd.Flags().StringP("user", "u", "", "Filter by user")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output conversation ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	convs, err := s.ListConversations(cmd.Context(), store.ListParams{
		UserID: user,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, c := range convs {
			fmt.Println(c.ID)
		}
		return
	}

	emit(convs, func(w io.Writer) {
		for _, c := range convs {
			fmt.Fprintf(w, "%s\t%s\t%d messages\t%s\n", c.ID, c.CreatedAt.Format(time.RFC3339), c.MessageCount, c.Title)
		}
	})
}

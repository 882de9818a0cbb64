package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import chat messages from JSON",
		Long: "Import a JSON array of chat records (file or stdin). Each record carries id, content " +
			"(or message), sender, timestamp and optionally conversationId, sessionId or userId. " +
			"Messages already stored are skipped.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := importRecords(cmd.Context(), s, data)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"conversations":%d,"messages":%d,"duplicates":%d}`+"\n",
		res.Conversations, res.Messages, res.Duplicates)
}

func importRecords(ctx context.Context, s *store.SQLiteStore, data []byte) (store.ImportResult, error) {
	var records []store.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return store.ImportResult{}, fmt.Errorf("parse json: %w", err)
	}
	return s.Import(ctx, records)
}

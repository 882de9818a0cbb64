package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Print the resolved analysis profile",
		Long: "Print the preset, thresholds, trend settings and keyword categories in effect, as a " +
			"YAML profile that can be edited and passed back with --profile.",
		Run: runLexicon,
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Report keywords listed in more than one category",
		Run:   runLexiconCheck,
	}

	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a built-in lexicon as YAML",
		Long:  "Print a built-in lexicon as YAML, ready to edit and pass back with --lexicon. Names: " + strings.Join(lexicon.PresetNames(), ", ") + ".",
		Args:  cobra.ExactArgs(1),
		Run:   runLexiconShow,
	}

	cmd.AddCommand(check, show)
	RootCmd.AddCommand(cmd)
}

func runLexicon(cmd *cobra.Command, args []string) {
	out, err := loadAnalysis().Dump()
	if err != nil {
		exitErr("lexicon", err)
	}
	os.Stdout.Write(out)
}

func runLexiconShow(cmd *cobra.Command, args []string) {
	lex, err := lexicon.Preset(args[0])
	if err != nil {
		exitErr("lexicon", err)
	}
	out, err := yaml.Marshal(lex.File())
	if err != nil {
		exitErr("lexicon", err)
	}
	os.Stdout.Write(out)
}

func runLexiconCheck(cmd *cobra.Command, args []string) {
	dups := loadAnalysis().Lexicon.Duplicates()
	emit(dups, func(w io.Writer) {
		if len(dups) == 0 {
			fmt.Fprintln(w, "no duplicate keywords")
			return
		}
		for _, d := range dups {
			fmt.Fprintf(w, "%q: kept in %s, dropped from %s\n", d.Keyword, d.Kept, d.Dropped)
		}
	})
}

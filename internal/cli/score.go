package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/risk"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score [text]",
		Short: "Score a single message",
		Long: "Score text against the crisis lexicon. Text can be a positional arg or piped via stdin. " +
			"Polarity comes from the sentiment provider unless --polarity is given.",
		Run: runScore,
	}

	cmd.Flags().Float64("polarity", 0, "Sentiment polarity in [-1, 1]")

	RootCmd.AddCommand(cmd)
}

func runScore(cmd *cobra.Command, args []string) {
	text := readContent(args)
	if strings.TrimSpace(text) == "" {
		exitErr("score", fmt.Errorf("text is required (positional arg or stdin)"))
	}

	an := loadAnalysis()
	polarity, _ := cmd.Flags().GetFloat64("polarity")
	if !cmd.Flags().Changed("polarity") {
		var err error
		polarity, err = newAnalyzer(newLogger()).Polarity(cmd.Context(), text)
		if err != nil {
			exitErr("polarity", err)
		}
	}

	sc := risk.Scorer{Lexicon: an.Lexicon, Config: an.Assess.Risk}
	res := sc.Score(text, polarity)
	emit(res, func(w io.Writer) {
		fmt.Fprintf(w, "level:    %s\n", res.Level)
		fmt.Fprintf(w, "score:    %.2f (risk %.2f, protective %.2f, polarity %.2f)\n",
			res.TotalScore, res.TotalNegative, res.ProtectiveAdjustment, res.Polarity)
		for _, m := range res.Matched {
			fmt.Fprintf(w, "  %-10s %-20s %s\n", m.Kind, m.Category, m.Keyword)
		}
		if res.RequiresImmediateAttention {
			fmt.Fprintln(w, "requires immediate attention")
		}
	})
}

// Package cli implements the eunoia-signals CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rcliao/eunoia-signals/internal/assess"
	"github.com/rcliao/eunoia-signals/internal/config"
	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/sentiment"
	"github.com/rcliao/eunoia-signals/internal/store"
)

var (
	dbPath      string
	formatFlag  string
	presetFlag  string
	profileFlag string
	lexiconFlag string
	verbose     bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "eunoia-signals",
	Short: "Risk signals for mental-health chat conversations",
	Long: "Scores chat messages against a crisis lexicon, aggregates them into risk levels and " +
		"watches conversations for escalation. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $EUNOIA_DB or ~/.eunoia-signals/signals.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Scoring preset: crisis, linear or ratio (default: $EUNOIA_PRESET or the profile's)")
	RootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "YAML analysis profile (default: $EUNOIA_PROFILE)")
	RootCmd.PersistentFlags().StringVar(&lexiconFlag, "lexicon", "", "YAML keyword lexicon, replaces the profile's")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

var settings = sync.OnceValue(func() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
})

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return settings().Database()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newLogger() *slog.Logger {
	level, err := settings().Level()
	if err != nil {
		exitErr("log level", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadAnalysis resolves the profile and preset from flags, then environment.
func loadAnalysis() *config.Analysis {
	a, err := resolveAnalysis(settings(), profileFlag, presetFlag, lexiconFlag)
	if err != nil {
		exitErr("load analysis", err)
	}
	return a
}

// resolveAnalysis prefers the flag values over cfg. A non-empty preset
// replaces the profile's own; a lexicon file replaces the profile's
// categories.
func resolveAnalysis(cfg *config.Config, profilePath, preset, lexiconPath string) (*config.Analysis, error) {
	if profilePath == "" {
		profilePath = cfg.ProfilePath
	}
	if preset == "" {
		preset = cfg.Preset
	}

	var p *config.Profile
	if profilePath != "" {
		var err error
		if p, err = config.LoadProfile(profilePath); err != nil {
			return nil, err
		}
	}
	a, err := p.Resolve(preset)
	if err != nil {
		return nil, err
	}
	if lexiconPath != "" {
		if a.Lexicon, err = lexicon.Load(lexiconPath); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func newAnalyzer(logger *slog.Logger) sentiment.Analyzer {
	cfg := settings()
	a, err := sentiment.New(sentiment.Options{
		Provider: cfg.Sentiment,
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
		Model:    cfg.OpenAIModel,
		Logger:   logger,
	})
	if err != nil {
		exitErr("sentiment", err)
	}
	return a
}

func newAssessor(logger *slog.Logger) *assess.Assessor {
	an := loadAnalysis()
	a := assess.New(newAnalyzer(logger), logger)
	a.Lexicon = an.Lexicon
	a.Config = an.Assess
	return a
}

// readContent joins args, or reads piped stdin when there are none.
func readContent(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

// emit prints v as indented JSON, or through text when --format text is
// set and the command has a text form.
func emit(v any, text func(w io.Writer)) {
	if formatFlag == "text" && text != nil {
		text(os.Stdout)
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

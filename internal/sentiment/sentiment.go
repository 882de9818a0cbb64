// Package sentiment provides pluggable polarity analyzers for message text.
// Polarity is a value in [-1, 1]; negative means negative affect.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
)

// Analyzer estimates the polarity of a text.
type Analyzer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// Clamp limits p to [-1, 1].
func Clamp(p float64) float64 {
	switch {
	case p < -1:
		return -1
	case p > 1:
		return 1
	}
	return p
}

// --- Keyword analyzer ---

// KeywordAnalyzer derives polarity from positive and negative keyword hits.
type KeywordAnalyzer struct {
	lex *lexicon.Lexicon
}

// NewKeywordAnalyzer returns an analyzer over lex. A nil lexicon uses the
// built-in mood lexicon.
func NewKeywordAnalyzer(lex *lexicon.Lexicon) *KeywordAnalyzer {
	if lex == nil {
		lex = lexicon.Mood()
	}
	return &KeywordAnalyzer{lex: lex}
}

// Polarity is (positive - negative) / words over distinct keyword hits.
func (a *KeywordAnalyzer) Polarity(_ context.Context, text string) (float64, error) {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0, nil
	}
	var pos, neg int
	for _, m := range a.lex.Match(text).Matched {
		switch lexicon.Kind(m.Kind) {
		case lexicon.KindPositive, lexicon.KindProtective:
			pos++
		case lexicon.KindRisk:
			neg++
		}
	}
	return Clamp(float64(pos-neg) / float64(words)), nil
}

// --- Fallback ---

// Fallback asks Primary first and answers from Secondary when it fails.
type Fallback struct {
	Primary   Analyzer
	Secondary Analyzer
	Logger    *slog.Logger
}

func (f *Fallback) Polarity(ctx context.Context, text string) (float64, error) {
	p, err := f.Primary.Polarity(ctx, text)
	if err == nil {
		return p, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if f.Logger != nil {
		f.Logger.Warn("sentiment provider failed, using keyword polarity", "error", err)
	}
	return f.Secondary.Polarity(ctx, text)
}

// --- Factory ---

// Options selects and configures an analyzer.
type Options struct {
	// Provider is "keyword" (default) or "openai".
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Logger   *slog.Logger
}

// New builds the analyzer named by opts.Provider. The openai provider falls
// back to keyword polarity on errors.
func New(opts Options) (Analyzer, error) {
	switch opts.Provider {
	case "", "keyword":
		return NewKeywordAnalyzer(nil), nil
	case "openai":
		if opts.APIKey == "" && opts.BaseURL == "" {
			return nil, fmt.Errorf("openai sentiment needs OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return &Fallback{
			Primary:   NewOpenAIAnalyzer(opts.APIKey, opts.BaseURL, opts.Model),
			Secondary: NewKeywordAnalyzer(nil),
			Logger:    opts.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q (valid: keyword, openai)", opts.Provider)
	}
}

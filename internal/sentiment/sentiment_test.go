package sentiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestKeywordAnalyzer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"neutral", "fui al mercado", 0},
		{"empty", "", 0},
		{"positive", "hoy me siento feliz y tranquilo", 2.0 / 6},
		{"negative", "estoy triste y con miedo", -2.0 / 5},
		{"mixed", "estoy triste pero mi familia me hace sentir bien", 0},
		{"mostly negative", "triste, con miedo, pero bien", -1.0 / 5},
		{"short and negative", "mal", -1},
	}

	a := NewKeywordAnalyzer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Polarity(context.Background(), tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Polarity(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	for in, want := range map[float64]float64{-3: -1, -1: -1, 0.4: 0.4, 1: 1, 7: 1} {
		if got := Clamp(in); got != want {
			t.Errorf("Clamp(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParsePolarity(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"-0.8", -0.8, false},
		{"Polarity: 0.25", 0.25, false},
		{"2", 1, false},
		{"very sad", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePolarity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePolarity(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePolarity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","created":0,"model":"test",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],`+
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIAnalyzer(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "-0.6")
	a := NewOpenAIAnalyzer("test-key", srv.URL+"/v1", "test")

	got, err := a.Polarity(context.Background(), "no quiero vivir")
	if err != nil {
		t.Fatal(err)
	}
	if got != -0.6 {
		t.Errorf("polarity = %v, want -0.6", got)
	}
}

func TestOpenAIAnalyzer_Error(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, "")
	a := NewOpenAIAnalyzer("test-key", srv.URL+"/v1", "test")
	if _, err := a.Polarity(context.Background(), "hola"); err == nil {
		t.Error("expected error from failing provider")
	}
}

type failing struct{}

func (failing) Polarity(context.Context, string) (float64, error) {
	return 0, errors.New("unavailable")
}

func TestFallback(t *testing.T) {
	var logs strings.Builder
	f := &Fallback{
		Primary:   failing{},
		Secondary: NewKeywordAnalyzer(nil),
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	}
	got, err := f.Polarity(context.Background(), "estoy triste")
	if err != nil {
		t.Fatal(err)
	}
	if got != -0.5 {
		t.Errorf("polarity = %v, want -0.5", got)
	}
	if !strings.Contains(logs.String(), "sentiment provider failed") {
		t.Errorf("expected warning to be logged, got %q", logs.String())
	}
}

func TestFallback_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &Fallback{Primary: failing{}, Secondary: NewKeywordAnalyzer(nil), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if _, err := f.Polarity(ctx, "estoy triste"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	if a, err := New(Options{}); err != nil {
		t.Fatal(err)
	} else if _, ok := a.(*KeywordAnalyzer); !ok {
		t.Errorf("default analyzer = %T, want *KeywordAnalyzer", a)
	}

	if a, err := New(Options{Provider: "openai", APIKey: "k"}); err != nil {
		t.Fatal(err)
	} else if _, ok := a.(*Fallback); !ok {
		t.Errorf("openai analyzer = %T, want *Fallback", a)
	}

	if _, err := New(Options{Provider: "openai"}); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := New(Options{Provider: "vader"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

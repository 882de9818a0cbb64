package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rcliao/eunoia-signals/internal/assess"
	"github.com/rcliao/eunoia-signals/internal/config"
	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/store"
)

const chatExport = `[
  {"_id": {"$oid": "65a4f1c2e4b0a1b2c3d4e5f6"}, "content": "me siento triste", "sender": "user", "timestamp": "2024-01-15T10:30:00Z", "sessionId": "s1", "userId": 7},
  {"content": "quiero matarme", "sender": "user", "timestamp": "2024-01-15T11:30:00Z", "sessionId": "s1", "userId": 7},
  {"id": "1", "content": "hola", "sender": "user", "timestamp": "2024-01-16T09:00:00Z", "sessionId": "s2", "userId": 8}
]`

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func importFixture(t *testing.T, s *store.SQLiteStore) {
	t.Helper()
	if _, err := importRecords(context.Background(), s, []byte(chatExport)); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestImportRecords(t *testing.T) {
	s := newTestStore(t)
	res, err := importRecords(context.Background(), s, []byte(chatExport))
	if err != nil {
		t.Fatal(err)
	}
	if res.Conversations != 2 || res.Messages != 3 || res.Duplicates != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	again, err := importRecords(context.Background(), s, []byte(chatExport))
	if err != nil {
		t.Fatal(err)
	}
	if again.Messages != 0 || again.Duplicates != 3 {
		t.Errorf("re-import should only find duplicates, got %+v", again)
	}

	if _, err := importRecords(context.Background(), s, []byte(`{"id": 1}`)); err == nil || !strings.Contains(err.Error(), "parse json") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestAssessConversation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	importFixture(t, s)
	a := assess.New(nil, quietLogger())

	res, err := assessConversation(ctx, s, a, "s1", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Level != model.LevelCritical || res.UserID != "7" || res.MessagesAnalyzed != 2 {
		t.Errorf("unexpected assessment %+v", res)
	}
	if recs, _ := s.ListAssessments(ctx, store.AssessmentListParams{}); len(recs) != 0 {
		t.Errorf("expected nothing saved, got %d", len(recs))
	}

	if _, err := assessConversation(ctx, s, a, "s1", true); err != nil {
		t.Fatal(err)
	}
	recs, _ := s.ListAssessments(ctx, store.AssessmentListParams{ConversationID: "s1"})
	if len(recs) != 1 || recs[0].Level != "critical" || recs[0].Score != res.MaxScore {
		t.Errorf("unexpected saved assessments %+v", recs)
	}

	if _, err := assessConversation(ctx, s, a, "missing", false); err == nil {
		t.Error("expected error for unknown conversation")
	}
}

func TestBatchRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	importFixture(t, s)

	b := &batchRun{
		store:    s,
		assessor: assess.New(nil, quietLogger()),
		list:     store.ListParams{Limit: 10},
		workers:  2,
		save:     true,
		logger:   quietLogger(),
	}
	sums, err := b.run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}
	byID := map[string]batchSummary{}
	for _, sum := range sums {
		byID[sum.ConversationID] = sum
	}
	if got := byID["s1"]; got.Level != "critical" || !got.Alert || got.InsufficientData {
		t.Errorf("s1 summary = %+v", got)
	}
	if got := byID["s2"]; !got.InsufficientData || got.Alert {
		t.Errorf("s2 summary = %+v", got)
	}

	// insufficient assessments are not stored
	recs, _ := s.ListAssessments(ctx, store.AssessmentListParams{})
	if len(recs) != 1 || recs[0].ConversationID != "s1" {
		t.Errorf("unexpected saved assessments %+v", recs)
	}
}

func TestBatchDefaults(t *testing.T) {
	cfg := &config.Config{Workers: 4, Schedule: "@every 1h"}
	if w, spec := batchDefaults(cfg, 0, ""); w != 4 || spec != "@every 1h" {
		t.Errorf("defaults = %d %q", w, spec)
	}
	if w, spec := batchDefaults(cfg, 8, "@daily"); w != 8 || spec != "@daily" {
		t.Errorf("flags not kept: %d %q", w, spec)
	}
}

func TestResolveAnalysis(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	os.WriteFile(profile, []byte("preset: linear\nthresholds: {medium: 2, high: 4, critical: 6}\n"), 0o644)
	lex := filepath.Join(dir, "lexicon.yaml")
	os.WriteFile(lex, []byte("name: mini\ncategories:\n  - name: clouds\n    kind: risk\n    keywords: [nube]\n"), 0o644)

	tests := []struct {
		name       string
		cfg        config.Config
		profile    string
		preset     string
		lexicon    string
		wantPreset string
		wantMedium float64
		wantLex    string
	}{
		{"defaults", config.Config{}, "", "", "", "crisis", 5, "crisis"},
		{"env preset", config.Config{Preset: "ratio"}, "", "", "", "ratio", 0.3, "crisis"},
		{"flag preset wins over env", config.Config{Preset: "ratio"}, "", "linear", "", "linear", 5, "crisis"},
		{"env profile", config.Config{ProfilePath: profile}, "", "", "", "linear", 2, "crisis"},
		{"env preset wins over profile", config.Config{ProfilePath: profile, Preset: "crisis"}, "", "", "", "crisis", 2, "crisis"},
		{"flag profile wins over env", config.Config{ProfilePath: filepath.Join(dir, "missing.yaml")}, profile, "", "", "linear", 2, "crisis"},
		{"lexicon file", config.Config{}, "", "", lex, "crisis", 5, "mini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := resolveAnalysis(&tt.cfg, tt.profile, tt.preset, tt.lexicon)
			if err != nil {
				t.Fatal(err)
			}
			if a.Assess.Risk.Name != tt.wantPreset || a.Assess.Risk.Thresholds.Medium != tt.wantMedium {
				t.Errorf("risk = %+v, want %s with medium %v", a.Assess.Risk, tt.wantPreset, tt.wantMedium)
			}
			if a.Lexicon.Name() != tt.wantLex {
				t.Errorf("lexicon = %s, want %s", a.Lexicon.Name(), tt.wantLex)
			}
		})
	}

	bad := []struct{ profile, preset, lexicon string }{
		{filepath.Join(dir, "missing.yaml"), "", ""},
		{"", "nope", ""},
		{"", "", filepath.Join(dir, "missing.yaml")},
	}
	for _, b := range bad {
		if _, err := resolveAnalysis(&config.Config{}, b.profile, b.preset, b.lexicon); err == nil {
			t.Errorf("expected error for %+v", b)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"high", []string{"high"}},
		{" high , critical ,", []string{"high", "critical"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteMessages(t *testing.T) {
	var buf bytes.Buffer
	writeMessages(&buf, []model.Message{
		{ConversationID: "c1", Sender: model.SenderUser, Content: "hola", Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{ConversationID: "c1", Sender: model.SenderAssistant, Content: "¿cómo estás?"},
	})
	want := "2024-01-15T10:00:00Z\tc1\tuser: hola\n-\tc1\tassistant: ¿cómo estás?\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteAssessment(t *testing.T) {
	var buf bytes.Buffer
	writeAssessment(&buf, &assess.Assessment{ConversationID: "c1", InsufficientData: true, MessagesAnalyzed: 1})
	if !strings.Contains(buf.String(), "insufficient data") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	writeAssessment(&buf, &assess.Assessment{
		ConversationID:  "c2",
		Level:           model.LevelCritical,
		MaxScore:        19,
		Recommendations: []string{"Contact the user now"},
		Alert:           &assess.Alert{Actions: []string{"call"}, EmergencyContacts: []string{"911"}},
	})
	out := buf.String()
	for _, s := range []string{"c2: critical", "- Contact the user now", "! call", "911"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

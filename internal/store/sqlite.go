package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL DEFAULT '',
		session_id  TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		id              TEXT NOT NULL,
		sender          TEXT NOT NULL,
		content         TEXT NOT NULL,
		timestamp       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (conversation_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(conversation_id, sender);

	CREATE TABLE IF NOT EXISTS assessments (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		level           TEXT NOT NULL,
		score           REAL NOT NULL,
		created_at      TEXT NOT NULL,
		body            TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_conversation ON assessments(conversation_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_assessments_level ON assessments(level);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) EnsureConversation(ctx context.Context, p ConversationParams) (*model.Conversation, error) {
	id := p.ID
	if id == "" {
		id = s.newID()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (id, user_id, session_id, title, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, p.UserID, p.SessionID, p.Title, now)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	// fill in details an earlier insert did not know
	_, err = s.db.ExecContext(ctx,
		`UPDATE conversations SET
			user_id    = CASE WHEN user_id = '' THEN ? ELSE user_id END,
			session_id = CASE WHEN session_id = '' THEN ? ELSE session_id END,
			title      = CASE WHEN title = '' THEN ? ELSE title END
		 WHERE id = ?`,
		p.UserID, p.SessionID, p.Title, id)
	if err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}

	return s.GetConversation(ctx, id)
}

// GetConversation returns one conversation with its message count.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, conversationSelect+` WHERE c.id = ? GROUP BY c.id`, id)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, p MessageParams) (*model.Message, bool, error) {
	if p.ConversationID == "" {
		return nil, false, fmt.Errorf("conversation id is required")
	}
	if !model.ValidSenders[p.Sender] {
		return nil, false, fmt.Errorf("invalid sender %q (valid: user, assistant)", p.Sender)
	}
	id := p.ID
	if id == "" {
		id = s.newID()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages (conversation_id, id, sender, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ConversationID, id, string(p.Sender), p.Content, p.Timestamp)
	if err != nil {
		return nil, false, fmt.Errorf("insert message: %w", err)
	}
	n, _ := res.RowsAffected()

	return &model.Message{
		ID:             id,
		ConversationID: p.ConversationID,
		Sender:         p.Sender,
		Content:        p.Content,
		Timestamp:      ParseTimestamp(p.Timestamp),
	}, n > 0, nil
}

func (s *SQLiteStore) Messages(ctx context.Context, p MessagesParams) ([]model.Message, error) {
	where := []string{"conversation_id = ?"}
	args := []interface{}{p.ConversationID}
	if p.Sender != "" {
		where = append(where, "sender = ?")
		args = append(args, string(p.Sender))
	}

	// newest first so a limit keeps the latest messages
	query := `SELECT conversation_id, id, sender, content, timestamp FROM messages
	          WHERE ` + strings.Join(where, " AND ") + ` ORDER BY rowid DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

const conversationSelect = `
	SELECT c.id, c.user_id, c.session_id, c.title, c.created_at, COUNT(m.id)
	FROM conversations c
	LEFT JOIN messages m ON m.conversation_id = c.id`

func (s *SQLiteStore) ListConversations(ctx context.Context, p ListParams) ([]model.Conversation, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := "1 = 1"
	args := []interface{}{}
	if p.UserID != "" {
		where = "c.user_id = ?"
		args = append(args, p.UserID)
	}
	query := conversationSelect + ` WHERE ` + where + `
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessments WHERE conversation_id = ?`, p.ConversationID); err != nil {
		return fmt.Errorf("delete assessments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, p.ConversationID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, p.ConversationID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation not found: %s", p.ConversationID)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (model.Message, error) {
	var m model.Message
	var sender, ts string
	if err := row.Scan(&m.ConversationID, &m.ID, &sender, &m.Content, &ts); err != nil {
		return m, err
	}
	m.Sender = model.Sender(sender)
	m.Timestamp = ParseTimestamp(ts)
	return m, nil
}

func scanConversation(row scanner) (model.Conversation, error) {
	var c model.Conversation
	var createdAt string
	if err := row.Scan(&c.ID, &c.UserID, &c.SessionID, &c.Title, &createdAt, &c.MessageCount); err != nil {
		return c, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses the timestamp formats found in chat exports.
// Times without a zone are taken as UTC. Anything else yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

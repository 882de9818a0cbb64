package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// DefaultImportConversation receives records that name no conversation,
// session or user.
const DefaultImportConversation = "imported"

// Scalar is a record field that exports write as a string, a number or a
// MongoDB extended-JSON wrapper ({"$oid": ...}, {"$date": ...},
// {"$numberLong": ...}). It always reads back as text.
type Scalar string

func (v *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Scalar(s)
	case b[0] == '{':
		var w struct {
			OID        string `json:"$oid"`
			Date       Scalar `json:"$date"`
			NumberLong string `json:"$numberLong"`
		}
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		switch {
		case w.OID != "":
			*v = Scalar(w.OID)
		case w.Date != "":
			*v = w.Date
		case w.NumberLong != "":
			*v = Scalar(w.NumberLong)
		default:
			return fmt.Errorf("unsupported value %s", b)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported value %s", b)
		}
		*v = Scalar(n.String())
	}
	return nil
}

// Record is the flat chat export format, one message per record. Older
// exports carry the text in Message instead of Content, and MongoDB dumps
// carry the id in MongoID.
type Record struct {
	ID             Scalar `json:"id,omitempty"`
	MongoID        Scalar `json:"_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Message        string `json:"message,omitempty"`
	Sender         string `json:"sender"`
	Timestamp      Scalar `json:"timestamp"`
	ConversationID Scalar `json:"conversationId,omitempty"`
	SessionID      Scalar `json:"sessionId,omitempty"`
	UserID         Scalar `json:"userId,omitempty"`
}

// ImportResult counts what Import did.
type ImportResult struct {
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	Duplicates    int `json:"duplicates"`
}

func (r Record) conversation() string {
	for _, id := range []Scalar{r.ConversationID, r.SessionID, r.UserID} {
		if id != "" {
			return string(id)
		}
	}
	return DefaultImportConversation
}

func (r Record) text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Message
}

// messageID returns the record's id, else its MongoDB id, else one derived
// from the conversation, sender, timestamp and text so that importing the
// same record again finds it.
func (r Record) messageID(conversationID string, sender model.Sender) string {
	if r.ID != "" {
		return string(r.ID)
	}
	if r.MongoID != "" {
		return string(r.MongoID)
	}
	h := sha256.New()
	for _, part := range []string{conversationID, string(sender), string(r.Timestamp), r.text()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "sha-" + hex.EncodeToString(h.Sum(nil))[:24]
}

// ExportAll returns every message as records, optionally only those of one
// conversation. Timestamps are exported as stored.
func (s *SQLiteStore) ExportAll(ctx context.Context, conversationID string) ([]Record, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if conversationID != "" {
		where = append(where, "m.conversation_id = ?")
		args = append(args, conversationID)
	}

	query := `SELECT m.id, m.content, m.sender, m.timestamp, m.conversation_id, c.session_id, c.user_id
	          FROM messages m JOIN conversations c ON c.id = m.conversation_id
	          WHERE ` + strings.Join(where, " AND ") + ` ORDER BY m.conversation_id, m.rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var id, ts, conv, session, user string
		if err := rows.Scan(&id, &r.Content, &r.Sender, &ts, &conv, &session, &user); err != nil {
			return nil, err
		}
		r.ID, r.Timestamp = Scalar(id), Scalar(ts)
		r.ConversationID, r.SessionID, r.UserID = Scalar(conv), Scalar(session), Scalar(user)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Import stores records. Messages already present (same conversation and
// id) are skipped and counted as duplicates.
func (s *SQLiteStore) Import(ctx context.Context, records []Record) (ImportResult, error) {
	var res ImportResult
	seen := map[string]bool{}
	for _, r := range records {
		convID := r.conversation()
		if !seen[convID] {
			if _, err := s.EnsureConversation(ctx, ConversationParams{
				ID:        convID,
				UserID:    string(r.UserID),
				SessionID: string(r.SessionID),
			}); err != nil {
				return res, err
			}
			seen[convID] = true
			res.Conversations++
		}

		sender := model.ParseSender(r.Sender)
		_, added, err := s.AddMessage(ctx, MessageParams{
			ConversationID: convID,
			ID:             r.messageID(convID, sender),
			Sender:         sender,
			Content:        r.text(),
			Timestamp:      string(r.Timestamp),
		})
		if err != nil {
			return res, err
		}
		if added {
			res.Messages++
		} else {
			res.Duplicates++
		}
	}
	return res, nil
}

package eventstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gigescrow/core/events"
	"gigescrow/core/types"
)

// Store is the append-only journal of emitted observations. Downstream
// collaborators (reputation scoring, notifications, analytics) read state
// changes from here rather than from engine internals.
type Store struct {
	db *sql.DB
}

// StoredEvent is a journal row.
type StoredEvent struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	RecordedAt time.Time         `json:"recordedAt"`
}

// NewStore opens (or creates) the journal database at the supplied path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	schema := `CREATE TABLE IF NOT EXISTS events (
        sequence INTEGER PRIMARY KEY AUTOINCREMENT,
        type TEXT NOT NULL,
        attributes TEXT NOT NULL,
        recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("eventstore: init schema: %w", err)
	}
	return nil
}

// Append records one emitted event with the next journal sequence.
func (s *Store) Append(evt *types.Event) error {
	if evt == nil {
		return fmt.Errorf("eventstore: nil event")
	}
	attrs, err := json.Marshal(evt.Attributes)
	if err != nil {
		return fmt.Errorf("eventstore: encode attributes: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO events (type, attributes, recorded_at) VALUES (?, ?, ?)`,
		evt.Type, string(attrs), time.Now().UTC(),
	)
	return err
}

// List returns up to limit journal rows whose type matches the prefix, in
// sequence order. An empty prefix matches everything.
func (s *Store) List(prefix string, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := strings.TrimSpace(prefix) + "%"
	rows, err := s.db.Query(
		`SELECT sequence, type, attributes, recorded_at FROM events
         WHERE type LIKE ? ORDER BY sequence ASC LIMIT ?`,
		pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredEvent
	for rows.Next() {
		var (
			evt      StoredEvent
			rawAttrs string
		)
		if err := rows.Scan(&evt.Sequence, &evt.Type, &rawAttrs, &evt.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rawAttrs), &evt.Attributes); err != nil {
			return nil, fmt.Errorf("eventstore: decode attributes for %d: %w", evt.Sequence, err)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Close shuts down the journal database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Journal adapts the store to the engine emitter contract. Append failures
// are logged rather than propagated; emission must never roll back the state
// transition that produced the event.
type Journal struct {
	store  *Store
	logger *slog.Logger
}

// NewJournal wraps a store as an emitter.
func NewJournal(store *Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: store, logger: logger}
}

// Emit implements the events.Emitter interface.
func (j *Journal) Emit(evt events.Event) {
	if j == nil || j.store == nil {
		return
	}
	payload, ok := evt.(events.PayloadEvent)
	if !ok {
		return
	}
	event := payload.Event()
	if event == nil {
		return
	}
	if err := j.store.Append(event); err != nil {
		j.logger.Error("journal append failed", "type", event.Type, "err", err)
	}
}

package message

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"callchat/internal/pkg/randx"
)

// PgStore persists messages in PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Create assigns an id and kind to m and inserts it.
func (s *PgStore) Create(ctx context.Context, m *Message) error {
	id, err := uuid.Parse(randx.MessageID())
	if err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}

	m.ID = id
	m.Kind = KindOf(m.Content)

	query := `INSERT INTO messages (id, sender_id, receiver_id, content, kind)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING read, created_at`

	err = s.pool.QueryRow(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.Content, m.Kind).
		Scan(&m.Read, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListConversation returns all messages exchanged between a and b, oldest first.
func (s *PgStore) ListConversation(ctx context.Context, a, b uuid.UUID) ([]Message, error) {
	query := `SELECT id, sender_id, receiver_id, content, kind, read, created_at
	          FROM messages
	          WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	          ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Message, error) {
		var m Message
		err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Kind, &m.Read, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	return messages, nil
}

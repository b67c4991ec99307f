package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"callchat/internal/app/db"
)

const userColumns = `id, username, email, password_hash, profile_picture, role, status,
	is_online, last_active, created_at, updated_at`

// PgStore persists users in PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.ProfilePicture,
		&u.Role,
		&u.Status,
		&u.IsOnline,
		&u.LastActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u and fills its generated columns.
func (s *PgStore) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (username, email, password_hash, profile_picture, role, status)
	          VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'User'), COALESCE(NULLIF($6, ''), 'Available'))
	          RETURNING ` + userColumns

	created, err := scanUser(s.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.ProfilePicture, u.Role, u.Status))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	*u = *created
	return nil
}

// GetByID returns the user with the given id.
func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, err
}

// GetByEmail returns the user registered with email.
func (s *PgStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, err
}

// ListContacts returns every user except excludeID, sorted by username.
func (s *PgStore) ListContacts(ctx context.Context, excludeID uuid.UUID) ([]*User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY username`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// UpdateProfile applies the non-empty fields of upd and returns the updated user.
func (s *PgStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	query := `UPDATE users
	          SET username        = COALESCE(NULLIF($2, ''), username),
	              profile_picture = COALESCE(NULLIF($3, ''), profile_picture),
	              status          = COALESCE(NULLIF($4, ''), status),
	              updated_at      = NOW()
	          WHERE id = $1
	          RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, query, id, upd.Username, upd.ProfilePicture, upd.Status))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// SetPresence writes the persisted online flag and last-active timestamp.
// Unknown or malformed ids are reported as ErrNotFound.
func (s *PgStore) SetPresence(ctx context.Context, userID string, online bool, lastActive time.Time) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.pool.Exec(ctx,
		`UPDATE users SET is_online = $2, last_active = $3 WHERE id = $1`, id, online, lastActive)
	if err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOnlineIDs returns the ids of users whose persisted flag is online.
func (s *PgStore) ListOnlineIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM users WHERE is_online`)
	if err != nil {
		return nil, fmt.Errorf("failed to query online users: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to collect online users: %w", err)
	}

	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}
	return result, nil
}

// UpsertByEmail inserts u or, if the email exists, overwrites its profile and password.
func (s *PgStore) UpsertByEmail(ctx context.Context, u *User) error {
	query := `INSERT INTO users (username, email, password_hash, profile_picture, role, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (email) DO UPDATE
	          SET username = EXCLUDED.username,
	              password_hash = EXCLUDED.password_hash,
	              profile_picture = EXCLUDED.profile_picture,
	              role = EXCLUDED.role,
	              status = EXCLUDED.status,
	              updated_at = NOW()
	          RETURNING ` + userColumns

	saved, err := scanUser(s.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.ProfilePicture, u.Role, u.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
	}

	*u = *saved
	return nil
}

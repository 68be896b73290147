package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
)

// SessionStore implements storage.SessionStore on PostgreSQL.
type SessionStore struct {
	db *sqlx.DB
}

type sessionRow struct {
	Token   string    `db:"token"`
	UserID  int64     `db:"user_id"`
	Start   time.Time `db:"session_start"`
	Options []byte    `db:"options"`
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session.Start.IsZero() {
		session.Start = time.Now()
	}
	options, err := json.Marshal(session.Options)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	if session.Options == nil {
		options = []byte(`{}`)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_sessions (token, user_id, session_start, options) VALUES ($1, $2, $3, $4)`,
		session.Token, session.UserID, session.Start, options)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return nil
}

func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var row sessionRow
	// The user join guarantees the session still belongs to a live account.
	err := s.db.GetContext(ctx, &row,
		`SELECT s.token, s.user_id, s.session_start, s.options
		   FROM user_sessions s
		   JOIN users u ON u.id = s.user_id
		  WHERE s.token = $1`,
		token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}

	session := &domain.Session{
		UserID: row.UserID,
		Token:  row.Token,
		Start:  row.Start,
	}
	if len(row.Options) > 0 {
		if err := json.Unmarshal(row.Options, &session.Options); err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrDatabase, err)
		}
	}
	return session, nil
}

func (s *SessionStore) UpdateOptions(ctx context.Context, token string, options map[string]any) error {
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_sessions SET options = options || $2::jsonb WHERE token = $1`,
		token, encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return nil
}

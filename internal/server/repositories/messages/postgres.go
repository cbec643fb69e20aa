package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

const (
	messageColumns = `id, sender, receiver, subject, body, unread, created_at`
	naturalOrder   = `ORDER BY sender, created_at, seq`
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	m := &models.Message{}
	if err := row.Scan(&m.ID, &m.Sender, &m.Receiver, &m.Subject, &m.Body, &m.Unread, &m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (id, sender, receiver, subject, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING unread, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.Sender, msg.Receiver, msg.Subject, msg.Body).Scan(&msg.Unread, &msg.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.Message, error) {

	var (
		query string
		args  []any
	)

	if f.Unread != nil {
		query = `SELECT ` + messageColumns + ` FROM messages
		 WHERE receiver = $1 AND unread = $2
		 ` + naturalOrder
		args = []any{f.Participant, *f.Unread}
	} else {
		query = `SELECT ` + messageColumns + ` FROM messages
		 WHERE receiver = $1 OR sender = $1
		 ` + naturalOrder
		args = []any{f.Participant}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ClaimNextUnread(ctx context.Context, receiver string) (*models.Message, error) {

	// SKIP LOCKED lets a concurrent claimer move on to the next message
	// instead of waiting and then re-reading a row that is already read.
	query :=
		`UPDATE messages SET unread = FALSE
		 WHERE id = (
			SELECT id FROM messages
			WHERE receiver = $1 AND unread
			` + naturalOrder + `
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING ` + messageColumns

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, receiver))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) DeleteFirst(ctx context.Context, sender, receiver string) (*models.Message, error) {

	// a row held by a concurrent delete is skipped, so that caller removes
	// the next match instead of waking up to an empty result
	query :=
		`DELETE FROM messages
		 WHERE id = (
			SELECT id FROM messages
			WHERE sender = $1 AND receiver = $2
			` + naturalOrder + `
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING ` + messageColumns

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, sender, receiver))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

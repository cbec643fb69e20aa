package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Issue(ctx context.Context, userName, token string, validity time.Duration) (*models.RefreshToken, error) {

	query :=
		`INSERT INTO refresh_tokens (token, username, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`

	rt := &models.RefreshToken{UserName: userName, Token: token, Expires: time.Now().Add(validity)}

	err := r.db.QueryRowContext(ctx, query, token, userName, rt.Expires).Scan(&rt.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rt, nil
}

// Consume is a single DELETE ... RETURNING: the row lock it takes makes a
// second transaction with the same token see nothing to delete.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {

	query :=
		`DELETE FROM refresh_tokens
		 WHERE token = $1
		 RETURNING username, expires_at, created_at`

	rt := &models.RefreshToken{Token: token}

	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.UserName, &rt.Expires, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rt, nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, userName string, now time.Time) (int64, error) {

	query :=
		`DELETE FROM refresh_tokens
		 WHERE username = $1 AND expires_at <= $2`

	res, err := r.db.ExecContext(ctx, query, userName, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

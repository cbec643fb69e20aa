// Package refreshtokens stores the refresh tokens handed out at login. A
// token is single use: redeeming it removes it from the store.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/postbox/internal/server/models"
)

type Repository interface {
	// Issue records token for userName, valid for validity from now.
	// An unknown userName yields common.ErrorNotFound.
	Issue(ctx context.Context, userName, token string, validity time.Duration) (*models.RefreshToken, error)

	// Consume removes token and returns the row it held. Of several
	// concurrent callers with the same token exactly one gets the row, the
	// others get common.ErrorNotFound. Expired tokens are consumed as well;
	// judging expiry is left to the caller.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// PurgeExpired drops userName's tokens that expired at or before now and
	// reports how many were removed.
	PurgeExpired(ctx context.Context, userName string, now time.Time) (int64, error)
}

package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := NewMemoryRepository()

	u, err := r.Create(ctx, &models.User{UserName: "alice", PasswordHash: []byte("h")})
	req.NoError(err)
	req.NotEmpty(u.ID)
	req.False(u.CreatedAt.IsZero())

	got, err := r.GetUserByLogin(ctx, "alice")
	req.NoError(err)
	req.Equal(u.ID, got.ID)
	req.Equal([]byte("h"), got.PasswordHash)

	_, err = r.Create(ctx, &models.User{UserName: "alice"})
	req.ErrorIs(err, common.ErrorAlreadyExists)

	_, err = r.GetUserByLogin(ctx, "bob")
	req.ErrorIs(err, common.ErrorNotFound)
}

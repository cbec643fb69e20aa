package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves process-local repositories. The DBTX
// argument is ignored, so work done "inside" a transaction is not rolled
// back on failure.
type InMemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	messages      *messages.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	u := users.NewMemoryRepository()
	knownUser := func(name string) bool {
		_, err := u.GetUserByLogin(context.Background(), name)
		return err == nil
	}
	return &InMemoryRepositoryManager{
		users:         u,
		refreshTokens: refreshtokens.NewMemoryRepository(knownUser),
		messages:      messages.NewMemoryRepository(knownUser),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Messages(dbx.DBTX) messages.Repository {
	return m.messages
}

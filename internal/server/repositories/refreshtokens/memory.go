package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
)

// MemoryRepository keeps refresh tokens in process memory. Every operation
// runs under one lock, so Consume hands a token out at most once.
type MemoryRepository struct {
	mu        sync.Mutex
	tokens    map[string]models.RefreshToken
	knownUser func(userName string) bool
}

// NewMemoryRepository returns an empty store. knownUser stands in for the
// foreign key on username; nil accepts every name.
func NewMemoryRepository(knownUser func(userName string) bool) *MemoryRepository {
	return &MemoryRepository{tokens: map[string]models.RefreshToken{}, knownUser: knownUser}
}

func (r *MemoryRepository) Issue(_ context.Context, userName, token string, validity time.Duration) (*models.RefreshToken, error) {
	if r.knownUser != nil && !r.knownUser(userName) {
		return nil, common.ErrorNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now()
	rt := models.RefreshToken{UserName: userName, Token: token, Expires: now.Add(validity), CreatedAt: now}
	r.tokens[token] = rt
	return &rt, nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tokens, token)
	return &rt, nil
}

func (r *MemoryRepository) PurgeExpired(_ context.Context, userName string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, rt := range r.tokens {
		if rt.UserName == userName && !rt.Expires.After(now) {
			delete(r.tokens, token)
			n++
		}
	}
	return n, nil
}

package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeUsersRepo keeps users in a map keyed by username. Setting createErr or
// getErr forces the corresponding method to fail.
type fakeUsersRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
	getErr    error
}

func newFakeUsersRepo(names ...string) *fakeUsersRepo {
	r := &fakeUsersRepo{users: map[string]*models.User{}}
	for _, n := range names {
		r.users[n] = &models.User{ID: "id-" + n, UserName: n}
	}
	return r
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "id-" + u.UserName
	u.CreatedAt = time.Now()
	f.users[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	mu         sync.Mutex
	tokens     map[string]*models.RefreshToken
	issueErr   error
	consumeErr error
	purgeErr   error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Issue(_ context.Context, userName, token string, validity time.Duration) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	rt := &models.RefreshToken{UserName: userName, Token: token, Expires: time.Now().Add(validity)}
	f.tokens[token] = rt
	return rt, nil
}

func (f *fakeRefreshRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.tokens, token)
	return rt, nil
}

func (f *fakeRefreshRepo) PurgeExpired(_ context.Context, userName string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	var n int64
	for token, rt := range f.tokens {
		if rt.UserName == userName && !rt.Expires.After(now) {
			delete(f.tokens, token)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshRepo) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

// fakeMessagesRepo is an in-memory message store with the same ordering and
// filtering rules as the PostgreSQL one.
type fakeMessagesRepo struct {
	mu    sync.Mutex
	rows  []*models.Message
	clock time.Time
	err   error
}

func newFakeMessagesRepo() *fakeMessagesRepo {
	return &fakeMessagesRepo{clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeMessagesRepo) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.clock = f.clock.Add(time.Second)
	msg.Unread = true
	msg.CreatedAt = f.clock
	cp := *msg
	f.rows = append(f.rows, &cp)
	return msg, nil
}

func (f *fakeMessagesRepo) sorted() []*models.Message {
	out := append([]*models.Message(nil), f.rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sender != out[j].Sender {
			return out[i].Sender < out[j].Sender
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeMessagesRepo) List(_ context.Context, flt messages.ListFilter) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Message{}
	for _, m := range f.sorted() {
		if flt.Unread != nil {
			if m.Receiver == flt.Participant && m.Unread == *flt.Unread {
				cp := *m
				out = append(out, &cp)
			}
			continue
		}
		if m.Receiver == flt.Participant || m.Sender == flt.Participant {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessagesRepo) ClaimNextUnread(_ context.Context, receiver string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.sorted() {
		if m.Receiver == receiver && m.Unread {
			m.Unread = false
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessagesRepo) DeleteFirst(_ context.Context, sender, receiver string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.sorted() {
		if m.Sender == sender && m.Receiver == receiver {
			for i, row := range f.rows {
				if row == m {
					f.rows = append(f.rows[:i], f.rows[i+1:]...)
					break
				}
			}
			return m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMessagesRepo) unreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.rows {
		if m.Unread {
			n++
		}
	}
	return n
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	m *fakeMessagesRepo
}

func newFakeRepoManager(names ...string) *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(names...),
		r: newFakeRefreshRepo(),
		m: newFakeMessagesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository           { return m.m }

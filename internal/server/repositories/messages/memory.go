package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/samber/lo"
)

type memoryRow struct {
	seq uint64
	msg models.Message
}

// MemoryRepository is an in-process message store with the same ordering and
// atomicity guarantees as the PostgreSQL one: every operation runs under a
// single lock.
type MemoryRepository struct {
	mu        sync.Mutex
	rows      []*memoryRow
	seq       uint64
	knownUser func(userName string) bool
}

// NewMemoryRepository returns an empty store. knownUser stands in for the
// foreign keys on sender and receiver; nil accepts every name.
func NewMemoryRepository(knownUser func(userName string) bool) *MemoryRepository {
	return &MemoryRepository{knownUser: knownUser}
}

func (r *MemoryRepository) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	if r.knownUser != nil && (!r.knownUser(msg.Sender) || !r.knownUser(msg.Receiver)) {
		return nil, common.ErrorNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	msg.Unread = true
	msg.CreatedAt = time.Now()
	r.rows = append(r.rows, &memoryRow{seq: r.seq, msg: *msg})

	return msg, nil
}

// ordered returns the rows matching keep in natural order. Callers hold mu.
func (r *MemoryRepository) ordered(keep func(*models.Message) bool) []*memoryRow {
	var out []*memoryRow
	for _, row := range r.rows {
		if keep(&row.msg) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.msg.Sender != b.msg.Sender {
			return a.msg.Sender < b.msg.Sender
		}
		if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
			return a.msg.CreatedAt.Before(b.msg.CreatedAt)
		}
		return a.seq < b.seq
	})
	return out
}

func (r *MemoryRepository) List(_ context.Context, f ListFilter) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := func(m *models.Message) bool {
		return m.Receiver == f.Participant || m.Sender == f.Participant
	}
	if f.Unread != nil {
		keep = func(m *models.Message) bool {
			return m.Receiver == f.Participant && m.Unread == *f.Unread
		}
	}

	list := lo.Map(r.ordered(keep), func(row *memoryRow, _ int) *models.Message {
		m := row.msg
		return &m
	})
	return list, nil
}

func (r *MemoryRepository) ClaimNextUnread(_ context.Context, receiver string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.ordered(func(m *models.Message) bool {
		return m.Receiver == receiver && m.Unread
	})
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}

	rows[0].msg.Unread = false
	m := rows[0].msg
	return &m, nil
}

func (r *MemoryRepository) DeleteFirst(_ context.Context, sender, receiver string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.ordered(func(m *models.Message) bool {
		return m.Sender == sender && m.Receiver == receiver
	})
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}

	victim := rows[0]
	for i, row := range r.rows {
		if row == victim {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			break
		}
	}

	m := victim.msg
	return &m, nil
}

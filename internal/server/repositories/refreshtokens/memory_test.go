package refreshtokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_IssueConsume(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := NewMemoryRepository(nil)

	issued, err := r.Issue(ctx, "alice", "tok", time.Hour)
	req.NoError(err)
	req.WithinDuration(time.Now().Add(time.Hour), issued.Expires, time.Minute)

	_, err = r.Issue(ctx, "alice", "tok", time.Hour)
	req.ErrorIs(err, common.ErrorAlreadyExists)

	rt, err := r.Consume(ctx, "tok")
	req.NoError(err)
	req.Equal("alice", rt.UserName)

	_, err = r.Consume(ctx, "tok")
	req.ErrorIs(err, common.ErrorNotFound)
}

func TestMemoryRepository_UnknownUser(t *testing.T) {
	r := NewMemoryRepository(func(name string) bool { return name == "alice" })

	_, err := r.Issue(context.Background(), "ghost", "tok", time.Hour)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository(nil)
	_, err := r.Issue(ctx, "alice", "tok", time.Hour)
	require.NoError(t, err)

	const callers = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	start := make(chan struct{})
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := r.Consume(ctx, "tok"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestMemoryRepository_PurgeExpired(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := NewMemoryRepository(nil)

	_, err := r.Issue(ctx, "alice", "old", -time.Minute)
	req.NoError(err)
	_, err = r.Issue(ctx, "alice", "fresh", time.Hour)
	req.NoError(err)
	_, err = r.Issue(ctx, "bob", "bobs-old", -time.Minute)
	req.NoError(err)

	n, err := r.PurgeExpired(ctx, "alice", time.Now())
	req.NoError(err)
	req.Equal(int64(1), n)

	_, err = r.Consume(ctx, "old")
	req.ErrorIs(err, common.ErrorNotFound)
	_, err = r.Consume(ctx, "fresh")
	req.NoError(err)
	_, err = r.Consume(ctx, "bobs-old")
	req.NoError(err)
}

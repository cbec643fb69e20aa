package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/postbox/internal/logging"
	"github.com/dmitrijs2005/postbox/internal/server/config"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

func testConfig(addr string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = addr
	return c
}

func TestNewApp_UnreachableDatabase(t *testing.T) {
	c := testConfig("127.0.0.1:0")
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/postbox?sslmode=disable&connect_timeout=1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewApp(ctx, c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "db init error")
}

func TestRun_StopsOnCancelAndClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app := newApp(testConfig("127.0.0.1:0"), logging.Nop{}, db, repomanager.NewInMemoryRepositoryManager())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StopsWhenServerFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app := newApp(testConfig("127.0.0.1:99999"), logging.Nop{}, db, repomanager.NewInMemoryRepositoryManager())

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after server failure")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

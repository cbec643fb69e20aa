// Package rest exposes the postbox services over HTTP/JSON. It owns routing,
// bearer-token authentication, request decoding and the mapping of service
// errors to status codes.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/postbox/internal/logging"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/services"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, userName, password, password2 string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// MessageService is the subset of services.MessageService the handlers need.
type MessageService interface {
	ListMessages(ctx context.Context, currentUser string, unread *bool) ([]*models.Message, error)
	FetchNextUnread(ctx context.Context, currentUser string) (*models.Message, error)
	SendMessage(ctx context.Context, currentUser string, out services.OutgoingMessage) (*models.Message, error)
	DeleteMessage(ctx context.Context, currentUser string, q services.DeleteQuery) (*models.Message, error)
}

type HTTPServer struct {
	address     string
	users       UserService
	messages    MessageService
	logger      logging.Logger
	jwtSecret   []byte
	corsOrigins []string
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ms MessageService, secretKey string, corsOrigins []string) *HTTPServer {
	return &HTTPServer{
		address:     a,
		logger:      l.With("module", "http_server"),
		users:       us,
		messages:    ms,
		jwtSecret:   []byte(secretKey),
		corsOrigins: corsOrigins,
	}
}

// Run serves the API until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}

package client

import (
	"context"
	"time"
)

// Message is a message as the API returns it.
type Message struct {
	Sender       string    `json:"sender"`
	Receiver     string    `json:"receiver"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	CreationDate time.Time `json:"creation_date"`
}

// DeleteParams names the other party of the message to delete. Sender wins
// when both are set.
type DeleteParams struct {
	Sender   string
	Receiver string
}

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, userName, password, password2 string) error
	Login(ctx context.Context, userName, password string) error
	Logout()
	LoggedIn() bool
	ListMessages(ctx context.Context, unread *bool) ([]Message, error)
	ReadNext(ctx context.Context) (*Message, error)
	Send(ctx context.Context, receiver, subject, body string) error
	Delete(ctx context.Context, p DeleteParams) (*Message, error)
}

// Package messages is the message store: persistence and filtered, ordered
// lookups of inbox messages.
//
// Every query returns rows in natural order: sender, then creation time
// (id breaks exact ties so results are deterministic).
package messages

import (
	"context"

	"github.com/dmitrijs2005/postbox/internal/server/models"
)

// ListFilter selects messages that involve Participant.
//
// With Unread nil, both sent and received messages match. With Unread set,
// only messages received by Participant whose unread flag equals *Unread
// match.
type ListFilter struct {
	Participant string
	Unread      *bool
}

// Repository defines the message store operations.
type Repository interface {
	// Create inserts msg. ID must be set by the caller; Unread and CreatedAt
	// are assigned by the store. An unknown sender or receiver yields
	// common.ErrorNotFound.
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)

	// List returns all messages matching f in natural order. No match is an
	// empty slice, not an error.
	List(ctx context.Context, f ListFilter) ([]*models.Message, error)

	// ClaimNextUnread marks the first unread message addressed to receiver as
	// read and returns it, in one atomic step. Concurrent callers never get
	// the same message. Returns common.ErrorNotFound when nothing is unread.
	ClaimNextUnread(ctx context.Context, receiver string) (*models.Message, error)

	// DeleteFirst removes the first message from sender to receiver and
	// returns it. Returns common.ErrorNotFound when there is none.
	DeleteFirst(ctx context.Context, sender, receiver string) (*models.Message, error)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/messages"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const msgDeleteNeedsParty = "One of the following fields must be passed: receiver, sender."

// DeleteQuery names the other party of the message to delete. When Sender is
// set it wins and the message is looked up among those received by the
// current user; otherwise Receiver selects among those the current user sent.
type DeleteQuery struct {
	Sender   string
	Receiver string
}

// OutgoingMessage is what a user submits to send. The sender is always the
// authenticated user and therefore not part of it.
type OutgoingMessage struct {
	Receiver string
	Subject  string
	Body     string
}

// MessageService implements the inbox operations. Every method takes the
// authenticated username explicitly; the service keeps no session state.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	newID       func() string
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		newID:       uuid.NewString,
	}
}

// ListMessages returns messages involving currentUser in natural order.
// With unread nil both sent and received messages are returned; otherwise
// only received ones whose unread flag equals *unread. An empty result is
// common.ErrorNotFound.
func (s *MessageService) ListMessages(ctx context.Context, currentUser string, unread *bool) ([]*models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	list, err := repo.List(ctx, messages.ListFilter{Participant: currentUser, Unread: unread})
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}

	return list, nil
}

// FetchNextUnread marks the first unread message of currentUser as read and
// returns it.
func (s *MessageService) FetchNextUnread(ctx context.Context, currentUser string) (*models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	msg, err := repo.ClaimNextUnread(ctx, currentUser)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error fetching unread message: %w", err)
	}

	return msg, nil
}

// SendMessage stores a new unread message from currentUser. An unknown
// receiver is reported as a field error on "receiver".
func (s *MessageService) SendMessage(ctx context.Context, currentUser string, out OutgoingMessage) (*models.Message, error) {
	unknownReceiver := common.FieldError("receiver",
		fmt.Sprintf("Object with username=%s does not exist.", out.Receiver))

	if _, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, out.Receiver); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, unknownReceiver
		}
		return nil, fmt.Errorf("error looking up receiver: %w", err)
	}

	msg := &models.Message{
		ID:       s.newID(),
		Sender:   currentUser,
		Receiver: out.Receiver,
		Subject:  out.Subject,
		Body:     out.Body,
	}

	created, err := s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		// receiver removed between the lookup and the insert
		if errors.Is(err, common.ErrorNotFound) {
			return nil, unknownReceiver
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	return created, nil
}

// DeleteMessage removes the first message, in natural order, exchanged
// between currentUser and the party named by q, and returns it.
func (s *MessageService) DeleteMessage(ctx context.Context, currentUser string, q DeleteQuery) (*models.Message, error) {
	var sender, receiver string

	switch {
	case q.Sender != "":
		sender, receiver = q.Sender, currentUser
	case q.Receiver != "":
		sender, receiver = currentUser, q.Receiver
	default:
		return nil, common.NewValidationError().
			Add("receiver", msgDeleteNeedsParty).
			Add("sender", msgDeleteNeedsParty)
	}

	msg, err := s.repomanager.Messages(s.db).DeleteFirst(ctx, sender, receiver)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error deleting message: %w", err)
	}

	return msg, nil
}

package rest

import (
	"time"

	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/samber/lo"
)

type registerRequest struct {
	UserName  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

type registerResponse struct {
	UserName string `json:"username"`
}

type loginRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// sendMessageRequest has no sender: the authenticated user always sends.
type sendMessageRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	Subject  string `json:"subject" validate:"required,max=255"`
	Message  string `json:"message" validate:"required"`
}

type messageResponse struct {
	Sender       string    `json:"sender"`
	Receiver     string    `json:"receiver"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	CreationDate time.Time `json:"creation_date"`
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		Sender:       m.Sender,
		Receiver:     m.Receiver,
		Subject:      m.Subject,
		Message:      m.Body,
		CreationDate: m.CreatedAt.UTC(),
	}
}

func toMessageResponses(list []*models.Message) []messageResponse {
	return lo.Map(list, func(m *models.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/services"
)

const (
	detailNoAccount  = "No active account found with the given credentials"
	detailBadRefresh = "Token is invalid or expired"
	queryUnread      = "unread"
	querySender      = "sender"
	queryReceiver    = "receiver"
)

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := registerRequest{
		UserName:  f.String("username"),
		Password:  f.String("password"),
		Password2: f.String("password2"),
	}
	if err := f.Validate(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.UserName, req.Password, req.Password2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.UserName)
	writeJSON(w, http.StatusCreated, registerResponse{UserName: user.UserName})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := loginRequest{UserName: f.String("username"), Password: f.String("password")}
	if err := f.Validate(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeUnauthorized(w, detailNoAccount)
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := refreshRequest{Refresh: f.String("refresh")}
	if err := f.Validate(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			writeUnauthorized(w, detailBadRefresh)
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (s *HTTPServer) handleListMessages(w http.ResponseWriter, r *http.Request) {
	unread, err := parseOptionalBool(queryUnread, r.URL.Query().Get(queryUnread))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.messages.ListMessages(r.Context(), currentUser(r.Context()), unread)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(list))
}

func (s *HTTPServer) handleFetchNextUnread(w http.ResponseWriter, r *http.Request) {
	msg, err := s.messages.FetchNextUnread(r.Context(), currentUser(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponse(msg))
}

func (s *HTTPServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := sendMessageRequest{
		Receiver: f.String("receiver"),
		Subject:  f.String("subject"),
		Message:  f.String("message"),
	}
	if err := f.Validate(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, err = s.messages.SendMessage(r.Context(), currentUser(r.Context()), services.OutgoingMessage{
		Receiver: req.Receiver,
		Subject:  req.Subject,
		Body:     req.Message,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *HTTPServer) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	msg, err := s.messages.DeleteMessage(r.Context(), currentUser(r.Context()), services.DeleteQuery{
		Sender:   q.Get(querySender),
		Receiver: q.Get(queryReceiver),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponse(msg))
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
)

type HTTPClient struct {
	baseURL   string
	healthURL string
	http      *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "http://127.0.0.1:8080/api/v1". timeout bounds every single request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}

	// the health check lives at the server root, outside the API prefix
	if u, err := url.Parse(c.baseURL); err == nil {
		u.Path, u.RawQuery = "/healthz", ""
		c.healthURL = u.String()
	}
	return c
}

// Ping reports whether the server answers its health check.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, userName, password, password2 string) error {
	in := map[string]string{"username": userName, "password": password, "password2": password2}
	return c.do(ctx, http.MethodPost, "/auth/register", nil, in, nil, false)
}

func (c *HTTPClient) Login(ctx context.Context, userName, password string) error {
	var out tokenPair
	in := map[string]string{"username": userName, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out, false); err != nil {
		return err
	}
	c.setTokens(out.Access, out.Refresh)
	return nil
}

// Logout forgets the tokens. The server keeps no session to end.
func (c *HTTPClient) Logout() {
	c.setTokens("", "")
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) ListMessages(ctx context.Context, unread *bool) ([]Message, error) {
	q := url.Values{}
	if unread != nil {
		q.Set("unread", strconv.FormatBool(*unread))
	}

	var out []Message
	if err := c.do(ctx, http.MethodGet, "/user/messages", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ReadNext(ctx context.Context) (*Message, error) {
	var out Message
	if err := c.do(ctx, http.MethodGet, "/user/message", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Send(ctx context.Context, receiver, subject, body string) error {
	in := map[string]string{"receiver": receiver, "subject": subject, "message": body}
	return c.do(ctx, http.MethodPost, "/user/message", nil, in, nil, true)
}

func (c *HTTPClient) Delete(ctx context.Context, p DeleteParams) (*Message, error) {
	q := url.Values{}
	if p.Sender != "" {
		q.Set("sender", p.Sender)
	}
	if p.Receiver != "" {
		q.Set("receiver", p.Receiver)
	}

	var out Message
	if err := c.do(ctx, http.MethodDelete, "/user/message", q, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// do performs one API call. With auth set, a 401 triggers a single token
// refresh followed by one retry.
func (c *HTTPClient) do(ctx context.Context, method, path string, q url.Values, in, out any, auth bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	resp, body, err := c.send(ctx, method, path, q, payload, auth)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && auth {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		if resp, body, err = c.send(ctx, method, path, q, payload, auth); err != nil {
			return err
		}
	}

	return decodeResponse(resp, body, out)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, q url.Values, payload []byte, auth bool) (*http.Response, []byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		access, _ := c.tokens()
		if access == "" {
			return nil, nil, ErrUnauthorized
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, body, nil
}

// refresh swaps the refresh token for a new pair. A rejected refresh token
// logs the client out.
func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrUnauthorized
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, body, err := c.send(ctx, http.MethodPost, "/auth/login/refresh", nil, payload, false)
	if err != nil {
		return err
	}

	var pair tokenPair
	if err := decodeResponse(resp, body, &pair); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		c.Logout()
		return ErrUnauthorized
	}

	c.setTokens(pair.Access, pair.Refresh)
	return nil
}

func decodeResponse(resp *http.Response, body []byte, out any) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return parseAPIError(resp.StatusCode, body)
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		return apiErr
	}

	if d, ok := raw["detail"]; ok {
		_ = json.Unmarshal(d, &apiErr.Detail)
		return apiErr
	}

	apiErr.Fields = make(map[string][]string, len(raw))
	for k, v := range raw {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err != nil {
			msgs = []string{string(v)}
		}
		apiErr.Fields[k] = msgs
	}
	return apiErr
}

// Package sweetsapi is the HTTP client for the remote sweets service, which
// owns inventory, purchases and credentials.
package sweetsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

const maxErrorBody = 4 << 10

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// SetTokenSource is used by wiring code where the token source itself
// depends on the client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

func (c *Client) Authenticate(ctx context.Context, username string, password string) (string, error) {
	var out model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false, model.LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		status := apierror.StatusOf(err)
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return "", fmt.Errorf("%w: %w", model.ErrInvalidCredentials, err)
		}
		return "", err
	}

	if strings.TrimSpace(out.Token) == "" {
		return "", apierror.New("UPSTREAM_ERROR", "login response carried no token", "", http.StatusBadGateway)
	}

	return out.Token, nil
}

func (c *Client) ListSweets(ctx context.Context) ([]model.Sweet, error) {
	var out []model.Sweet
	if err := c.do(ctx, http.MethodGet, "/api/sweets", true, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Sweet{}
	}
	return out, nil
}

func (c *Client) CreateSweet(ctx context.Context, draft model.SweetDraft) (model.Sweet, error) {
	var out model.Sweet
	if err := c.do(ctx, http.MethodPost, "/api/sweets", true, draft, &out); err != nil {
		return model.Sweet{}, err
	}
	return out, nil
}

func (c *Client) PurchaseSweet(ctx context.Context, id int64) (model.Sweet, error) {
	var out model.Sweet
	path := "/api/sweets/" + strconv.FormatInt(id, 10) + "/purchase"
	if err := c.do(ctx, http.MethodPost, path, true, nil, &out); err != nil {
		return model.Sweet{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, path string, authenticated bool, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		if c.tokens == nil {
			return model.ErrNoSession
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierror.New("UPSTREAM_UNAVAILABLE", "sweets service unreachable", err.Error(), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierror.New("UPSTREAM_ERROR", "invalid response from sweets service", err.Error(), http.StatusBadGateway)
	}

	return nil
}

// decodeError keeps the upstream status and whatever message the service
// sent, in either {"message": ...} or {"error": ...} form.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	message := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(raw, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			message = parsed.Message
		case len(parsed.Error) > 0:
			var text string
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(parsed.Error, &text) == nil && text != "" {
				message = text
			} else if json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "" {
				message = nested.Message
			}
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		message = text
	}

	return apierror.New(upstreamCode(resp.StatusCode), message, "", resp.StatusCode)
}

func upstreamCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "UPSTREAM_ERROR"
	}
}

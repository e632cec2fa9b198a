package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/errs"
	"fieldtour/internal/ports"
)

// TokenSource supplies the bearer credential attached to every request.
// An empty token means the request goes out unauthenticated (login).
type TokenSource func(ctx context.Context) (string, error)

// StatusError is a non-2xx response from the backend. The sync layer treats
// it as a remote rejection: no local state is mutated.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.Status)
}

// Client is a thin HTTP wrapper over the survey backend. The timeout covers
// the full request; on expiry the call is treated as failed and callers fall
// back to cached data where one exists.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

var (
	_ ports.TourAPI    = (*Client)(nil)
	_ ports.AccountAPI = (*Client)(nil)
)

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(err, "encode request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errs.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return errs.Wrap(err, "load bearer token")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warn(logging.WithAttrs(ctx, slog.String("component", "api.client")),
			"request rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errs.Wrap(err, "decode response body")
		}
	}
	return nil
}

type toursTodayResponse struct {
	Data []ports.ServerTour `json:"data"`
}

func (c *Client) ToursToday(ctx context.Context) ([]ports.ServerTour, error) {
	var resp toursTodayResponse
	if err := c.do(ctx, http.MethodGet, "/api/tours/today", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) StartTour(ctx context.Context, tourID string) error {
	return c.do(ctx, http.MethodPost, "/api/tours/"+url.PathEscape(tourID)+"/start", nil, nil)
}

func (c *Client) EndTour(ctx context.Context, req ports.EndTourRequest) error {
	return c.do(ctx, http.MethodPost, "/api/tours/"+url.PathEscape(req.TourID)+"/end", req, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		Authorization struct {
			Token string `json:"token"`
		} `json:"authorization"`
		User struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"data"`
}

func (c *Client) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{
		Token:     resp.Data.Authorization.Token,
		UserID:    resp.Data.User.ID,
		UserName:  resp.Data.User.Name,
		UserEmail: resp.Data.User.Email,
	}, nil
}

type profileResponse struct {
	Data struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Employee *struct {
			Admin *struct {
				User *struct {
					Name string `json:"name"`
				} `json:"user"`
			} `json:"admin"`
		} `json:"employee"`
	} `json:"data"`
}

func (c *Client) Profile(ctx context.Context) (ports.Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/employee-profile", nil, &resp); err != nil {
		return ports.Profile{}, err
	}

	profile := ports.Profile{
		Name:  resp.Data.Name,
		Email: resp.Data.Email,
	}
	if emp := resp.Data.Employee; emp != nil && emp.Admin != nil && emp.Admin.User != nil {
		profile.SupervisorName = emp.Admin.User.Name
	}
	return profile, nil
}

type resetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewConfirmation string `json:"new_password_confirmation"`
}

func (c *Client) ResetPassword(ctx context.Context, current, next, confirm string) error {
	return c.do(ctx, http.MethodPost, "/api/employee-profile/reset-password", resetPasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
		NewConfirmation: confirm,
	}, nil)
}

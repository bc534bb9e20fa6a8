// Package client is an HTTP client for the registrar API, meant for nodes
// that register and unregister themselves.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/registrar/internal/models"
)

// ErrUnexpectedStatus is returned when the registrar answers with a status
// the operation does not expect.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client talks to one registrar instance.
type Client struct {
	http *resty.Client
}

// Option customizes New.
type Option func(*resty.Client)

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(timeout)
	}
}

// WithRetries retries requests failing at the transport level.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// New creates a client for the registrar listening at baseURL.
func New(baseURL string, options ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	for _, option := range options {
		option(httpClient)
	}

	return &Client{http: httpClient}
}

// List returns the nodes registered for user. An unknown user yields an
// empty result.
func (c *Client) List(ctx context.Context, user string) (models.UserRegistrations, error) {
	result := models.UserRegistrations{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&result).
		Get("/registrations/" + url.PathEscape(user))
	if err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/List(): error while `resty.Request.Get()` calling: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return result, nil
	case http.StatusNotFound:
		return models.UserRegistrations{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
}

// Register creates or updates a node of user.
func (c *Client) Register(ctx context.Context, user string, registration models.UserRegistration) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(registration).
		Post("/registrations/" + url.PathEscape(user))
	if err != nil {
		return fmt.Errorf("in internal/client/client.go/Register(): error while `resty.Request.Post()` calling: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode(), resp.String())
	}

	return nil
}

// Unregister removes a node of user. Removing an unknown node succeeds.
func (c *Client) Unregister(ctx context.Context, user, nodeID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/registrations/" + url.PathEscape(user) + "/" + url.PathEscape(nodeID))
	if err != nil {
		return fmt.Errorf("in internal/client/client.go/Unregister(): error while `resty.Request.Delete()` calling: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	return nil
}

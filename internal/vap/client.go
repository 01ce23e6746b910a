package vap

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent      = "vaphq/vap-cli"
	defaultTimeout = 60 * time.Second
)

// HeaderSource supplies per-request headers, normally the bearer token of the stored session.
type HeaderSource interface {
	AuthHeaders() map[string]string
}

type Client struct {
	logger     *zap.Logger
	headers    HeaderSource
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client for the backend rooted at apiURL.
func New(apiURL string, headers HeaderSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		APIURL:  strings.TrimRight(apiURL, "/"),
		headers: headers,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// WithTimeout bounds every request made by the client. Zero keeps the default.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.HTTPClient.Timeout = timeout
	}
	return c
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}

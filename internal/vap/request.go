package vap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/utils"
)

const (
	contentType     = "application/json"
	maxLogBodyRunes = 300
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// call describes one request/response exchange with the backend.
type call struct {
	op       string
	fallback string
	method   string
	path     string
	// anonymous calls (login, register) never carry the session token.
	anonymous bool
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) getJSON(ctx context.Context, cl call, target any) error {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl.path), nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Message: networkErrorMessage, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.exchange(req, cl)
	if err != nil {
		return err
	}

	return decode(cl.op, data, target)
}

func (c *Client) sendJSON(ctx context.Context, cl call, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Message: cl.fallback, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl.path), bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Message: networkErrorMessage, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.exchange(req, cl)
	if err != nil {
		return err
	}

	return decode(cl.op, data, target)
}

// exchange sends req and returns the body of a 2xx answer.
func (c *Client) exchange(req *http.Request, cl call) ([]byte, error) {
	req = c.setHeaders(req, !cl.anonymous)

	resp, err := c.request(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, transportError(cl.op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(cl.op, fmt.Errorf("read body: %w", err))
	}

	c.logger.Debug("got response from backend",
		zap.String("op", cl.op),
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", utils.TruncateForLog(string(data), maxLogBodyRunes)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(cl, resp, data)
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, withAuth bool) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if withAuth && c.headers != nil {
		for key, value := range c.headers.AuthHeaders() {
			req.Header.Set(key, value)
		}
	}

	return req
}

func serverError(cl call, resp *http.Response, data []byte) *Error {
	message := cl.fallback

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		message = body.Message
	}

	return &Error{
		Kind:    KindServer,
		Op:      cl.op,
		Status:  resp.StatusCode,
		Message: message,
	}
}

// decode parses a JSON body into target and checks it against target's validate tags.
// Items are decoded through mapstructure so that numeric ids from the backend become strings.
func decode(op string, data []byte, target any) error {
	if target == nil {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformedError(op, fmt.Errorf("parse body: %w", err))
	}

	// Weak decoding would wrap a lone object into a one-element list.
	if reflect.TypeOf(target).Elem().Kind() == reflect.Slice && raw != nil {
		if _, ok := raw.([]any); !ok {
			return malformedError(op, fmt.Errorf("expected a list, got %T", raw))
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return malformedError(op, err)
	}

	if err := decoder.Decode(raw); err != nil {
		return malformedError(op, fmt.Errorf("decode body: %w", err))
	}

	if err := validateValue(target); err != nil {
		return malformedError(op, err)
	}

	return nil
}

func validateValue(target any) error {
	switch v := target.(type) {
	case *[]Developer:
		for i := range *v {
			if err := validate.Struct(&(*v)[i]); err != nil {
				return fmt.Errorf("developer %d: %w", i, err)
			}
		}
		return nil
	case *[]Resume:
		for i := range *v {
			if err := validate.Struct(&(*v)[i]); err != nil {
				return fmt.Errorf("resume %d: %w", i, err)
			}
		}
		return nil
	case *generatedResume:
		return validate.StructExcept((*Resume)(v), "ID")
	default:
		return validate.Struct(target)
	}
}

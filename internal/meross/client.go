package meross

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/merossd/internal/constants"
)

// Response is the outcome of a request the device accepted.
// Data is nil when the body was empty or not JSON, Raw always holds the text.
type Response struct {
	StatusCode int
	Raw        string
	Data       any
}

func (r Response) IsJSON() bool {
	return r.Data != nil
}

type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// WithRandom replaces crypto/rand as the message id source
func WithRandom(r io.Reader) Option {
	return func(cl *Client) { cl.random = r }
}

// WithTimeout sets the timeout used when Send is called without one
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

type Client struct {
	logger     *log.Logger
	httpClient *http.Client
	now        func() time.Time
	random     io.Reader
	timeout    time.Duration
}

func NewClient(logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		logger:     logger,
		httpClient: &http.Client{},
		now:        time.Now,
		random:     rand.Reader,
		timeout:    constants.DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildRequest creates a complete signed envelope. It does no I/O and holds
// no state between calls.
func (c *Client) BuildRequest(address string, secret string, namespace string, method string, payload any) (Envelope, error) {
	id := make([]byte, 16)
	if _, err := io.ReadFull(c.random, id); err != nil {
		return Envelope{}, fmt.Errorf("error generating message id: %w", err)
	}
	messageID := hex.EncodeToString(id)
	timestamp := c.now().Unix()

	if payload == nil {
		payload = map[string]any{}
	}

	return Envelope{
		Header: Header{
			From:           endpointURL(address),
			MessageID:      messageID,
			Method:         method,
			Namespace:      namespace,
			PayloadVersion: constants.PayloadVersion,
			Timestamp:      timestamp,
			Sign:           Sign(messageID, secret, timestamp),
		},
		Payload: payload,
	}, nil
}

// Send posts a freshly built envelope to the device and waits at most
// timeout (or the client default when timeout <= 0) for the answer.
func (c *Client) Send(ctx context.Context, address string, secret string, namespace string, method string, payload any, timeout time.Duration) (Response, error) {
	envelope, err := c.BuildRequest(address, secret, namespace, method, payload)
	if err != nil {
		return Response{}, err
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return Response{}, fmt.Errorf("error encoding %s request: %w", namespace, err)
	}

	if timeout <= 0 {
		timeout = c.timeout
	}
	return c.makeRequest(ctx, address, body, timeout)
}

func (c *Client) makeRequest(ctx context.Context, address string, body []byte, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(address), bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	// make the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("device request failed", "address", address, "err", err)
		return Response{}, &DeviceUnreachableError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &DeviceUnreachableError{Address: address, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("device rejected request", "address", address, "status", resp.Status)
		return Response{}, &DeviceRejectedError{Address: address, StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	result := Response{StatusCode: resp.StatusCode, Raw: string(responseBody)}

	// some firmware answers fire-and-forget commands with an empty or non-JSON body
	var data any
	if err := json.Unmarshal(responseBody, &data); err == nil {
		result.Data = data
	} else {
		c.logger.Debug("non-JSON response body", "address", address, "body", result.Raw)
	}

	return result, nil
}

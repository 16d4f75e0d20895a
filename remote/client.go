// Package remote implements the JSON client for the remote authority, the
// external REST service treated as ground truth for projects, tasks and
// accounts. All requests attach a bearer token when a session exists; the
// absence of a token is not an error at this layer.
package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const responseMaxSize = 1 << 20 // 1 MiB

const tracerName = "taskflow-client/remote"

// Client talks to the remote authority.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger
	// Token returns the current bearer token, or "" when no session exists.
	Token func() string
}

// New creates a Client for the given base URL.
func New(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Logger:  logger,
	}
}

// do issues a JSON request and decodes the response into out when non-nil.
// Non-2xx responses become an *Error carrying the authority's message, or
// fallback when the body has none.
func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()

	metrics := newRequestMetrics(c.Logger, method, path)
	if sc := span.SpanContext(); sc.HasTraceID() {
		metrics.SetTraceID(sc.TraceID().String())
	}

	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := sonic.ConfigStd.NewEncoder(buf).Encode(body); err != nil {
			metrics.Log(0, err)
			return err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		metrics.Log(0, err)
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	metrics.SetRequestID(requestID)
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		metrics.SetErrorStage("transport")
		metrics.Log(0, err)
		return &Error{Message: fallback, cause: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &Error{StatusCode: resp.StatusCode, Message: fallback}
		if msg := extractMessage(resp.Body); msg != "" {
			rerr.Message = msg
		}
		span.SetStatus(codes.Error, rerr.Message)
		metrics.SetErrorStage("remote")
		metrics.Log(resp.StatusCode, rerr)
		return rerr
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		dec := sonic.ConfigStd.NewDecoder(io.LimitReader(resp.Body, responseMaxSize))
		if err := dec.Decode(out); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode")
			metrics.SetErrorStage("decode_response")
			metrics.Log(resp.StatusCode, err)
			return &Error{StatusCode: resp.StatusCode, Message: fallback, cause: err}
		}
	}

	metrics.Log(resp.StatusCode, nil)
	return nil
}

// extractMessage pulls the human-readable error out of a {message} (or, on
// the auth endpoints, {msg}) shaped body.
func extractMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(r, responseMaxSize))
	if err := dec.Decode(&body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	default:
		return body.Error
	}
}

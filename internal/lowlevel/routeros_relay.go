package lowlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// RelayRequest is the request envelope accepted by the relay endpoint.
type RelayRequest struct {
	Url     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body,omitempty"`
}

// RelayResponse is the response envelope returned by the relay endpoint.
// Body is JSON if the target answered with JSON, a JSON string otherwise.
// BodyEncoding is optional, relays that set it remove the ambiguity of JSON string documents.
type RelayResponse struct {
	Status       int               `json:"status"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Body         json.RawMessage   `json:"body"`
	BodyEncoding string            `json:"bodyEncoding,omitempty"`
}

// Values of RelayResponse.BodyEncoding.
const (
	RelayBodyJson = "json"
	RelayBodyText = "text"
)

type RelayOptions struct {
	// Endpoint is the full URL of the relay endpoint.
	Endpoint string
	// Token is sent as bearer token to the relay endpoint if set.
	Token string
	// Timeout limits the relay call, 0 means no limit.
	Timeout time.Duration
	Debug   bool
}

// RelayClient sends requests through a trusted forwarding endpoint that performs the actual call.
type RelayClient struct {
	opts   RelayOptions
	client *http.Client
	log    *slog.Logger
}

func NewRelayClient(opts RelayOptions) *RelayClient {
	c := &RelayClient{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		log: slog.Default(),
	}

	c.debugLog("relay client created", "relay_url", opts.Endpoint)

	return c
}

func (c *RelayClient) Type() domain.TransportType {
	return domain.TransportRelay
}

func (c *RelayClient) debugLog(msg string, args ...any) {
	if c.opts.Debug {
		c.log.Debug(logPrefix+msg, args...)
	}
}

// Send forwards the envelope to the relay endpoint. An error is always a *RelayError,
// a non-2xx status of the target is returned as regular response.
func (c *RelayClient) Send(ctx context.Context, req RequestEnvelope) (*ResponseEnvelope, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	relayReq := RelayRequest{
		Url:     req.Url,
		Method:  req.Method,
		Headers: req.Headers,
	}
	if req.Body != nil {
		body := string(req.Body)
		relayReq.Body = &body
	}

	payload, err := json.Marshal(relayReq)
	if err != nil {
		return nil, c.relayError(0, fmt.Errorf("failed to encode relay request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, c.relayError(0, fmt.Errorf("failed to create relay request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	slog.Debug(logPrefix+"sending request via relay", "url", req.Url, "method", req.Method, "relay", c.opts.Endpoint)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.relayError(0, err)
	}
	defer internal.LogClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.relayError(resp.StatusCode, fmt.Errorf("failed to read relay response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		relayErr := c.relayError(resp.StatusCode, fmt.Errorf("relay answered %s: %s",
			resp.Status, strings.TrimSpace(string(data))))
		relayErr.Detail = relayErrorDetail(data)
		return nil, relayErr
	}

	var relayResp RelayResponse
	if err := json.Unmarshal(data, &relayResp); err != nil {
		return nil, c.relayError(resp.StatusCode, fmt.Errorf("invalid relay envelope: %w", err))
	}
	if relayResp.Status == 0 {
		return nil, c.relayError(resp.StatusCode, fmt.Errorf("relay envelope without status"))
	}

	c.debugLog("retrieved relay result", "url", req.Url, "status", relayResp.Status,
		"duration", time.Since(start).String())

	return unwrapRelayResponse(relayResp)
}

func (c *RelayClient) relayError(status int, err error) *RelayError {
	return &RelayError{Endpoint: c.opts.Endpoint, Status: status, Err: err}
}

// relayErrorDetail extracts the message of an error answer of the relay endpoint.
func relayErrorDetail(data []byte) string {
	var structured map[string]any
	if err := json.Unmarshal(data, &structured); err == nil {
		for _, key := range []string{"Message", "message", "error", "Details"} {
			if msg, ok := structured[key].(string); ok && msg != "" {
				return msg
			}
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

func unwrapRelayResponse(relayResp RelayResponse) (*ResponseEnvelope, error) {
	headers := make(map[string]string, len(relayResp.Headers))
	for k, v := range relayResp.Headers {
		headers[strings.ToLower(k)] = v
	}

	envelope := &ResponseEnvelope{
		Status:     relayResp.Status,
		StatusText: relayResp.StatusText,
		Headers:    headers,
	}

	raw := bytes.TrimSpace(relayResp.Body)
	switch {
	case len(raw) == 0 || string(raw) == "null":
		// no body
	case relayResp.BodyEncoding == RelayBodyJson:
		envelope.Body = ResponseBody{Json: json.RawMessage(raw)}
	case raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, &TransportError{Kind: domain.OutcomeParseError, Err: err}
		}
		if relayResp.BodyEncoding == "" && isJsonStringDocument(envelope.ContentType(), text) {
			envelope.Body = ResponseBody{Json: json.RawMessage(raw)}
			break
		}
		body, err := decodeResponseBody(envelope.Status, envelope.ContentType(), []byte(text))
		if err != nil {
			return envelope, err
		}
		envelope.Body = body
	default:
		envelope.Body = ResponseBody{Json: json.RawMessage(raw)}
	}

	return envelope, nil
}

// isJsonStringDocument reports whether a string body of a relay without body encoding is most likely
// a JSON string document of the target. Text that starts like any other JSON value but does not parse
// stays a parse error.
func isJsonStringDocument(contentType, text string) bool {
	if !isJsonContentType(contentType) {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || json.Valid([]byte(trimmed)) {
		return false
	}
	return !strings.ContainsRune(`{["-0123456789`, rune(trimmed[0])) &&
		!strings.HasPrefix(trimmed, "true") && !strings.HasPrefix(trimmed, "false") &&
		!strings.HasPrefix(trimmed, "null")
}

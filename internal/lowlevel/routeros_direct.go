package lowlevel

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type DirectOptions struct {
	// Origin is the page origin the request is issued from, e.g. "https://portal.example.com".
	// If empty, no mixed content or CORS checks are performed.
	Origin string
	// EnforceCors rejects responses that do not allow Origin.
	EnforceCors bool
	VerifyTls   bool
	// Timeout limits the router call, 0 means no limit.
	Timeout time.Duration
	Debug   bool
	// Classifier determines the kind of failed round trips. Defaults to DirectErrorClassifier.
	Classifier ErrorClassifier
}

// DirectClient talks to the router without any intermediary. It behaves like an anonymous
// cross-origin fetch: no cookies, no client certificates.
type DirectClient struct {
	opts   DirectOptions
	client *http.Client
	log    *slog.Logger
}

func NewDirectClient(opts DirectOptions) *DirectClient {
	c := &DirectClient{
		opts: opts,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !opts.VerifyTls,
				},
			},
			Timeout: opts.Timeout,
			// Jar stays nil, credentials are omitted
		},
		log: slog.Default(),
	}
	if c.opts.Classifier == nil {
		c.opts.Classifier = DirectErrorClassifier()
	}

	c.debugLog("direct client created", "origin", opts.Origin, "enforce_cors", opts.EnforceCors)

	return c
}

func (c *DirectClient) Type() domain.TransportType {
	return domain.TransportDirect
}

func (c *DirectClient) debugLog(msg string, args ...any) {
	if c.opts.Debug {
		c.log.Debug(logPrefix+msg, args...)
	}
}

// Send issues the request. Failures are returned as *TransportError with kind
// OutcomeNetworkUnreachable, OutcomeCorsBlocked, OutcomeMixedContent or OutcomeParseError.
// Non-2xx statuses are regular responses.
func (c *DirectClient) Send(ctx context.Context, req RequestEnvelope) (*ResponseEnvelope, error) {
	target, err := url.Parse(req.Url)
	if err != nil || target.Host == "" {
		return nil, &TransportError{Kind: domain.OutcomeNetworkUnreachable, Url: req.Url,
			Err: fmt.Errorf("invalid url: %v", err)}
	}

	if c.isMixedContent(target) {
		return nil, &TransportError{Kind: domain.OutcomeMixedContent, Url: req.Url, Err: ErrMixedContent}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.Url, body)
	if err != nil {
		return nil, &TransportError{Kind: domain.OutcomeNetworkUnreachable, Url: req.Url,
			Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.opts.Origin != "" {
		httpReq.Header.Set("Origin", c.opts.Origin)
	}

	start := time.Now()
	c.debugLog("executing direct request", "url", req.Url, "method", req.Method)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Kind: c.failureKind(err), Url: req.Url, Err: err}
	}
	defer internal.LogClose(resp.Body)

	if c.isCorsBlocked(resp) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Kind: domain.OutcomeCorsBlocked, Url: req.Url,
			Err: fmt.Errorf("%w (origin %s, allowed %q)", ErrCorsBlocked, c.opts.Origin,
				resp.Header.Get("Access-Control-Allow-Origin"))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: c.failureKind(err), Url: req.Url,
			Err: fmt.Errorf("failed to read response: %w", err)}
	}

	envelope := &ResponseEnvelope{
		Status:     resp.StatusCode,
		StatusText: statusTextFromResponse(resp),
		Headers:    flattenHeaders(resp.Header),
	}
	envelope.Body, err = decodeResponseBody(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	c.debugLog("retrieved direct result", "url", req.Url, "status", resp.StatusCode,
		"duration", time.Since(start).String())
	if err != nil {
		if te, ok := err.(*TransportError); ok {
			te.Url = req.Url
		}
		return envelope, err
	}

	return envelope, nil
}

// failureKind classifies a failed round trip, unrecognised errors count as unreachable network.
func (c *DirectClient) failureKind(err error) domain.OutcomeCategory {
	kind := c.opts.Classifier.Classify(err)
	if kind == domain.OutcomeUnknown {
		kind = domain.OutcomeNetworkUnreachable
	}
	c.debugLog("classified direct failure", "kind", kind, "error", err)
	return kind
}

func (c *DirectClient) isMixedContent(target *url.URL) bool {
	return strings.HasPrefix(strings.ToLower(c.opts.Origin), "https://") && strings.EqualFold(target.Scheme, "http")
}

func (c *DirectClient) isCorsBlocked(resp *http.Response) bool {
	if !c.opts.EnforceCors || c.opts.Origin == "" {
		return false
	}
	allowed := strings.TrimSpace(resp.Header.Get("Access-Control-Allow-Origin"))
	return allowed != "*" && !strings.EqualFold(strings.TrimRight(allowed, "/"), strings.TrimRight(c.opts.Origin, "/"))
}

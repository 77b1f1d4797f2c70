package relay

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

var ErrUnauthorized = errors.New("missing or invalid relay token")
var ErrTargetNotAllowed = errors.New("relay target not allowed")

// region dependencies

type RouterSettingsProvider interface {
	GetRouterConfig(ctx context.Context) (domain.RouterConfig, error)
}

// endregion dependencies

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPut:    {},
	http.MethodPost:   {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Forwarder performs relay requests on behalf of clients that cannot reach the router themselves.
type Forwarder struct {
	cfg       *config.Config
	settings  RouterSettingsProvider
	transport lowlevel.Transport
}

// NewForwarder creates a forwarder that issues the requests with the given transport. It should
// be a direct transport without origin, the forwarder is not subject to browser restrictions.
func NewForwarder(cfg *config.Config, settings RouterSettingsProvider, transport lowlevel.Transport) *Forwarder {
	return &Forwarder{
		cfg:       cfg,
		settings:  settings,
		transport: transport,
	}
}

// Authorize checks the value of the Authorization header.
func (f *Forwarder) Authorize(header string) error {
	if f.cfg.Core.RelayToken == "" {
		return nil
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || subtle.ConstantTimeCompare([]byte(token), []byte(f.cfg.Core.RelayToken)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Forward executes the relay request. Invalid requests return domain.ErrInvalidData or ErrTargetNotAllowed,
// an unreachable target returns the transport error. Any status of the target is a valid response.
func (f *Forwarder) Forward(ctx context.Context, req lowlevel.RelayRequest) (*lowlevel.RelayResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	if _, ok := allowedMethods[method]; !ok {
		return nil, fmt.Errorf("%w: method %q is not supported", domain.ErrInvalidData, req.Method)
	}

	target, err := url.Parse(req.Url)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("%w: invalid target url %q", domain.ErrInvalidData, req.Url)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q is not supported", domain.ErrInvalidData, target.Scheme)
	}

	if err := f.checkTarget(ctx, target); err != nil {
		return nil, err
	}

	envelope := lowlevel.RequestEnvelope{
		Url:     target.String(),
		Method:  method,
		Headers: req.Headers,
	}
	if req.Body != nil {
		envelope.Body = []byte(*req.Body)
	}

	slog.Debug("forwarding relay request", "url", target.Redacted(), "method", method)

	resp, err := f.transport.Send(ctx, envelope)
	var transportErr *lowlevel.TransportError
	switch {
	case err == nil:
	case resp != nil && errors.As(err, &transportErr) && transportErr.Kind == domain.OutcomeParseError:
		// forwarded as text, the relay client classifies the body itself
	default:
		slog.Warn("relay target failed", "url", target.Redacted(), "method", method, "error", err)
		return nil, err
	}

	body, err := resp.Body.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode relay body: %w", err)
	}

	relayResp := &lowlevel.RelayResponse{
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Headers:    resp.Headers,
		Body:       body,
	}
	switch {
	case resp.Body.IsJson():
		relayResp.BodyEncoding = lowlevel.RelayBodyJson
	case !resp.Body.IsEmpty():
		relayResp.BodyEncoding = lowlevel.RelayBodyText
	}
	return relayResp, nil
}

func (f *Forwarder) checkTarget(ctx context.Context, target *url.URL) error {
	if !f.cfg.Core.RelayRestrictTarget {
		return nil
	}

	routerCfg, err := f.settings.GetRouterConfig(ctx)
	if err != nil {
		return fmt.Errorf("%w: no router connection configured: %v", ErrTargetNotAllowed, err)
	}

	allowed := &url.URL{Scheme: routerCfg.Scheme(), Host: routerCfg.Host()}
	if !strings.EqualFold(canonicalHost(target), canonicalHost(allowed)) {
		return fmt.Errorf("%w: %s", ErrTargetNotAllowed, target.Host)
	}
	return nil
}

// canonicalHost returns host:port with the default port of the scheme filled in.
func canonicalHost(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return strings.ToLower(u.Hostname()) + ":" + port
}

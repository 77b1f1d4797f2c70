package routerapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/app"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

const logPrefix = "[RT-API] "

// region dependencies

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}

type RouterSettingsProvider interface {
	// GetRouterConfig returns the stored router connection. domain.ErrNotFound is returned if none is stored.
	GetRouterConfig(ctx context.Context) (domain.RouterConfig, error)
}

type Prober interface {
	// Ping checks whether the host answers ICMP echo requests.
	Ping(ctx context.Context, host string) error
}

// endregion dependencies

// Manager performs router calls. It checks the configuration, selects the transport,
// classifies the result and reports every attempt exactly once.
type Manager struct {
	cfg *config.Config
	bus EventBus

	settings   RouterSettingsProvider
	selector   *lowlevel.TransportSelector
	classifier *lowlevel.OutcomeClassifier
	prober     Prober

	session    *Session
	controller *wgcontroller.RouterOsController
}

// NewManager creates a new router API manager. The prober is optional.
func NewManager(
	cfg *config.Config,
	bus EventBus,
	settings RouterSettingsProvider,
	selector *lowlevel.TransportSelector,
	prober Prober,
) (*Manager, error) {
	if selector == nil {
		return nil, errors.New("transport selector is required")
	}

	m := &Manager{
		cfg:        cfg,
		bus:        bus,
		settings:   settings,
		selector:   selector,
		classifier: lowlevel.NewOutcomeClassifier(nil),
		prober:     prober,
		session:    NewSession(),
	}
	m.controller = wgcontroller.NewRouterOsController(m)

	return m, nil
}

// Session returns the connection session shared by all callers.
func (m *Manager) Session() *Session {
	return m.session
}

// Execute performs a single router call. It never returns without having logged the attempt
// and published exactly one notification.
func (m *Manager) Execute(ctx context.Context, call wgcontroller.RouterCall) domain.Outcome {
	callId := uuid.NewString()
	start := time.Now()

	routerCfg, err := m.settings.GetRouterConfig(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		outcome := domain.Outcome{
			Category:  domain.OutcomeUnknown,
			Transport: domain.TransportNone,
			Message:   "failed to load router settings",
			Err:       err,
		}
		m.report(ctx, callId, call, routerCfg, "", outcome, time.Since(start))
		return outcome
	}

	if !routerCfg.Usable() {
		outcome := domain.Outcome{
			Category:  domain.OutcomeConfigIncomplete,
			Transport: domain.TransportNone,
			Message:   "missing " + strings.Join(routerCfg.MissingFields(), ", "),
			Err:       domain.ErrConfigIncomplete,
		}
		m.report(ctx, callId, call, routerCfg, "", outcome, time.Since(start))
		return outcome
	}

	builder := lowlevel.NewRequestBuilder(routerCfg, m.cfg.Advanced.ApiBasePath, m.cfg.Advanced.UserAgent)
	req, err := builder.Build(call.Method, call.Command, call.Options, call.Body)
	if err != nil {
		outcome := domain.Outcome{
			Category:  domain.OutcomeConfigIncomplete,
			Transport: domain.TransportNone,
			Message:   "invalid router address",
			Err:       fmt.Errorf("%w: %w", domain.ErrConfigIncomplete, err),
		}
		m.report(ctx, callId, call, routerCfg, "", outcome, time.Since(start))
		return outcome
	}

	transport := m.selector.Select(m.cfg.Core.UseRelay)
	resp, err := transport.Send(ctx, req)
	outcome := m.classifier.Classify(transport.Type(), resp, err)

	switch {
	case outcome.Success() && call.Decode != nil:
		if err := call.Decode(resp); err != nil {
			outcome = domain.Outcome{
				Category:   domain.OutcomeParseError,
				Transport:  outcome.Transport,
				Status:     outcome.Status,
				StatusText: outcome.StatusText,
				Err:        err,
			}
		}
	case outcome.Category == domain.OutcomeHttpError:
		if apiErr := resp.ApiError(); apiErr != nil {
			outcome.Message = joinNonEmpty(": ", apiErr.Message, apiErr.Detail)
			outcome.Err = errors.New(apiErr.String())
		}
	}

	m.report(ctx, callId, call, routerCfg, req.Url, outcome, time.Since(start))

	if outcome.Category == domain.OutcomeNetworkUnreachable {
		m.probe(callId, routerCfg)
	}

	return outcome
}

// report writes the diagnostic log entry, the notification and the call event.
func (m *Manager) report(
	ctx context.Context,
	callId string,
	call wgcontroller.RouterCall,
	routerCfg domain.RouterConfig,
	targetUrl string,
	outcome domain.Outcome,
	duration time.Duration,
) {
	attrs := []any{
		"callId", callId,
		"operation", call.Operation,
		"method", call.Method,
		"url", targetUrl,
		"transport", outcome.Transport,
		"category", outcome.Category,
		"duration", duration.String(),
	}
	if outcome.Status != 0 {
		attrs = append(attrs, "status", outcome.Status, "statusText", outcome.StatusText)
	}

	switch outcome.Category {
	case domain.OutcomeSuccess:
		slog.DebugContext(ctx, logPrefix+"router call succeeded", attrs...)
	case domain.OutcomeConfigIncomplete, domain.OutcomeHttpError:
		attrs = append(attrs, "message", outcome.Message, "error", outcome.Err)
		slog.WarnContext(ctx, logPrefix+"router call failed", attrs...)
	default:
		attrs = append(attrs, "message", outcome.Message, "error", outcome.Err, "stack", domain.GetStackTrace())
		slog.ErrorContext(ctx, logPrefix+"router call failed", attrs...)
	}

	notification := notificationFor(call.Operation, routerCfg, outcome)
	notification.Id = uuid.NewString()
	notification.CallId = callId
	notification.CreatedAt = time.Now()
	m.bus.Publish(app.TopicNotification, notification)

	m.bus.Publish(app.TopicRouterCallCompleted, domain.CallEvent{
		CallId:    callId,
		Operation: call.Operation,
		Outcome:   outcome,
		Duration:  duration,
	})
}

// probe logs whether the router answers ICMP, it helps telling a wrong port from a dead host.
func (m *Manager) probe(callId string, routerCfg domain.RouterConfig) {
	if m.prober == nil || !m.cfg.Advanced.PingOnUnreachable {
		return
	}

	host := strings.Trim(strings.TrimSpace(routerCfg.Address), "[]")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.prober.Ping(ctx, host); err != nil {
			slog.Info(logPrefix+"router does not answer ping", "callId", callId, "host", host, "error", err)
			return
		}
		slog.Info(logPrefix+"router answers ping, the REST API port is not reachable",
			"callId", callId, "host", host)
	}()
}

func joinNonEmpty(sep string, parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, sep)
}

package lowlevel

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// ErrorClassifier maps a transport failure to an outcome category.
// OutcomeUnknown is returned if the error is not recognised.
type ErrorClassifier interface {
	Classify(err error) domain.OutcomeCategory
}

// ClassifierFunc adapts a function to the ErrorClassifier interface.
type ClassifierFunc func(err error) domain.OutcomeCategory

func (f ClassifierFunc) Classify(err error) domain.OutcomeCategory {
	return f(err)
}

// TypedClassifier recognises the errors produced by the transports of this package.
type TypedClassifier struct{}

func (TypedClassifier) Classify(err error) domain.OutcomeCategory {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return domain.OutcomeRelayFailure
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Kind != "" {
		return transportErr.Kind
	}

	if errors.Is(err, domain.ErrConfigIncomplete) {
		return domain.OutcomeConfigIncomplete
	}

	return domain.OutcomeUnknown
}

// NetClassifier uses the structured errors of the Go network stack.
type NetClassifier struct{}

func (NetClassifier) Classify(err error) domain.OutcomeCategory {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.OutcomeNetworkUnreachable
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.ETIMEDOUT):
		return domain.OutcomeNetworkUnreachable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.OutcomeNetworkUnreachable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.OutcomeNetworkUnreachable
	}

	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) {
		return domain.OutcomeNetworkUnreachable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.OutcomeNetworkUnreachable
	}

	return domain.OutcomeUnknown
}

// MessageRule maps a substring of an error message or error name to a category.
type MessageRule struct {
	Contains string
	Category domain.OutcomeCategory
}

// DefaultMessageRules are the messages browsers use for blocked or failed fetch calls.
// The order matters, the first matching rule wins.
var DefaultMessageRules = []MessageRule{
	{Contains: "Mixed Content", Category: domain.OutcomeMixedContent},
	{Contains: "CORS", Category: domain.OutcomeCorsBlocked},
	{Contains: "NetworkError", Category: domain.OutcomeNetworkUnreachable},
	{Contains: "Failed to fetch", Category: domain.OutcomeNetworkUnreachable},
	{Contains: "Load failed", Category: domain.OutcomeNetworkUnreachable},
}

// MessageClassifier matches error messages. Platforms without structured error information
// (browsers, foreign relays) only expose the message text, which is not a stable contract.
type MessageClassifier struct {
	Rules []MessageRule
}

func (c MessageClassifier) Classify(err error) domain.OutcomeCategory {
	rules := c.Rules
	if rules == nil {
		rules = DefaultMessageRules
	}

	texts := []string{err.Error()}
	var named interface{ Name() string }
	if errors.As(err, &named) {
		texts = append(texts, named.Name())
	}

	for _, rule := range rules {
		for _, text := range texts {
			if strings.Contains(text, rule.Contains) {
				return rule.Category
			}
		}
	}

	return domain.OutcomeUnknown
}

// ChainClassifier returns the first known category of its members.
type ChainClassifier []ErrorClassifier

func (c ChainClassifier) Classify(err error) domain.OutcomeCategory {
	for _, classifier := range c {
		if category := classifier.Classify(err); category != domain.OutcomeUnknown {
			return category
		}
	}
	return domain.OutcomeUnknown
}

// RelayDetailClassifier classifies the error message a relay endpoint answered with, relays running
// in a browser-like runtime report blocked or failed target calls that way.
type RelayDetailClassifier struct {
	Messages MessageClassifier
}

func (c RelayDetailClassifier) Classify(err error) domain.OutcomeCategory {
	var relayErr *RelayError
	if !errors.As(err, &relayErr) || relayErr.Detail == "" {
		return domain.OutcomeUnknown
	}
	return c.Messages.Classify(errors.New(relayErr.Detail))
}

// DefaultClassifier checks relay reported messages first, then typed errors, then network errors,
// then error messages.
func DefaultClassifier() ErrorClassifier {
	return ChainClassifier{RelayDetailClassifier{}, TypedClassifier{}, NetClassifier{}, MessageClassifier{}}
}

// DirectErrorClassifier classifies the raw errors of a direct round trip.
func DirectErrorClassifier() ErrorClassifier {
	return ChainClassifier{NetClassifier{}, MessageClassifier{}}
}

// OutcomeClassifier turns the result of a transport call into an outcome.
type OutcomeClassifier struct {
	errors ErrorClassifier
}

func NewOutcomeClassifier(classifier ErrorClassifier) *OutcomeClassifier {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &OutcomeClassifier{errors: classifier}
}

// Classify returns the outcome of a call. A response without error is classified by status,
// errors are classified by the error classifier. Unrecognised errors count as relay failure
// on the relay path and as network failure on the direct path.
func (c *OutcomeClassifier) Classify(
	transport domain.TransportType,
	resp *ResponseEnvelope,
	err error,
) domain.Outcome {
	if err == nil {
		if resp == nil {
			return domain.Outcome{Category: domain.OutcomeUnknown, Transport: transport}
		}
		return domain.OutcomeFromStatus(transport, resp.Status, resp.StatusText)
	}

	category := c.errors.Classify(err)
	if category == domain.OutcomeUnknown {
		switch transport {
		case domain.TransportRelay:
			category = domain.OutcomeRelayFailure
		case domain.TransportDirect:
			category = domain.OutcomeNetworkUnreachable
		}
	}

	outcome := domain.Outcome{
		Category:  category,
		Transport: transport,
		Err:       err,
	}
	if resp != nil { // parse errors still carry the status
		outcome.Status = resp.Status
		outcome.StatusText = resp.StatusText
	}
	return outcome
}

package domain

import (
	"fmt"
	"net/http"
)

// OutcomeCategory is the closed set of results a router call can end with.
type OutcomeCategory string

const (
	OutcomeSuccess            OutcomeCategory = "success"
	OutcomeHttpError          OutcomeCategory = "http_error"
	OutcomeCorsBlocked        OutcomeCategory = "cors_blocked"
	OutcomeMixedContent       OutcomeCategory = "mixed_content_blocked"
	OutcomeNetworkUnreachable OutcomeCategory = "network_unreachable"
	OutcomeRelayFailure       OutcomeCategory = "relay_failure"
	OutcomeParseError         OutcomeCategory = "parse_error"
	OutcomeConfigIncomplete   OutcomeCategory = "config_incomplete"
	OutcomeUnknown            OutcomeCategory = "unknown"
)

// TransportType identifies the path a request took.
type TransportType string

const (
	TransportRelay  TransportType = "relay"
	TransportDirect TransportType = "direct"
	TransportNone   TransportType = "none" // no request was issued
)

// Outcome is the classified result of a single call attempt.
type Outcome struct {
	Category   OutcomeCategory `json:"category"`
	Transport  TransportType   `json:"transport"`
	Status     int             `json:"status,omitempty"`
	StatusText string          `json:"statusText,omitempty"`
	Message    string          `json:"message,omitempty"` // short, user facing
	Err        error           `json:"-"`
}

// Success is true only for responses with a status in [200, 300).
func (o Outcome) Success() bool {
	return o.Category == OutcomeSuccess
}

func (o Outcome) String() string {
	if o.Category == OutcomeHttpError {
		return fmt.Sprintf("%s(%d %s)", o.Category, o.Status, o.StatusText)
	}
	return string(o.Category)
}

// Error makes a failed outcome usable as error value. Success outcomes return "success".
func (o Outcome) Error() string {
	switch {
	case o.Err != nil && o.Message != "":
		return o.Message + ": " + o.Err.Error()
	case o.Err != nil:
		return o.Err.Error()
	case o.Message != "":
		return o.Message
	default:
		return o.String()
	}
}

func (o Outcome) Unwrap() error {
	return o.Err
}

// OutcomeFromStatus classifies a completed HTTP exchange.
func OutcomeFromStatus(transport TransportType, status int, statusText string) Outcome {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	o := Outcome{
		Transport:  transport,
		Status:     status,
		StatusText: statusText,
	}
	if status >= 200 && status < 300 {
		o.Category = OutcomeSuccess
	} else {
		o.Category = OutcomeHttpError
	}
	return o
}

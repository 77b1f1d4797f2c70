package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   OutcomeCategory
	}{
		{200, OutcomeSuccess},
		{204, OutcomeSuccess},
		{299, OutcomeSuccess},
		{199, OutcomeHttpError},
		{300, OutcomeHttpError},
		{401, OutcomeHttpError},
		{500, OutcomeHttpError},
	}

	for _, tt := range tests {
		o := OutcomeFromStatus(TransportRelay, tt.status, "")
		assert.Equal(t, tt.want, o.Category, "status %d", tt.status)
		assert.Equal(t, tt.want == OutcomeSuccess, o.Success())
	}
}

func TestOutcome_Unauthorized(t *testing.T) {
	o := OutcomeFromStatus(TransportRelay, 401, "Unauthorized")
	assert.False(t, o.Success())
	assert.Equal(t, OutcomeHttpError, o.Category)
	assert.Equal(t, 401, o.Status)
	assert.Equal(t, "http_error(401 Unauthorized)", o.String())
}

func TestOutcome_Error(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	o := Outcome{Category: OutcomeNetworkUnreachable, Message: "router unreachable", Err: cause}
	assert.Equal(t, "router unreachable: dial tcp: connection refused", o.Error())
	assert.ErrorIs(t, o, cause)

	assert.Equal(t, "success", Outcome{Category: OutcomeSuccess}.Error())
}

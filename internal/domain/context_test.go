package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestId(t *testing.T) {
	assert.Empty(t, GetRequestId(context.Background()))

	ctx := SetRequestId(context.Background(), "REQ123")
	assert.Equal(t, "REQ123", GetRequestId(ctx))
}

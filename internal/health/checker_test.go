package health

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_CheckAll(t *testing.T) {
	h := NewHealthChecker(logrus.New())
	h.Register("mongodb", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return nil })

	result := h.CheckAll(context.Background())
	assert.Equal(t, "healthy", result.Status)
	require.Len(t, result.Services, 2)
	assert.Equal(t, "mongodb", result.Services[0].Name)

	h.Register("postgresql", func(context.Context) error { return errors.New("connection refused") })

	result = h.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "connection refused", result.Services[2].Error)
}

package telemetry_test

import (
	"context"
	"testing"

	"membership-service/internal/logger"
	"membership-service/internal/telemetry"

	"github.com/stretchr/testify/require"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), "", "membership-service", "test", logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

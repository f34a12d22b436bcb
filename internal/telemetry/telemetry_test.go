package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown := Setup("test-service", "", false)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ledgergate/pkg/domain-errors"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultPageSize, cfg.Demo.PageSize)
	assert.Equal(t, []string{"Notary", "Oracle"}, cfg.Demo.ServiceOrganisations)
	assert.Zero(t, cfg.Demo.WorkflowWaitTimeout)
	assert.Zero(t, cfg.Throttle.RPS)
	assert.Equal(t, 30*time.Second, cfg.Node.Timeout)
	assert.Zero(t, cfg.RequestTimeout, "node calls are bounded by the node timeout alone")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LEDGERGATE_ADDR", ":9090")
	t.Setenv("NODE_RPC_URL", "http://partya:10006")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("SERVICE_ORGANISATIONS", "Notary, PriceOracle ,")
	t.Setenv("WORKFLOW_WAIT_TIMEOUT", "2m")
	t.Setenv("THROTTLE_RPS", "12.5")
	t.Setenv("THROTTLE_BURST", "20")
	t.Setenv("REQUEST_TIMEOUT", "45s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "http://partya:10006", cfg.Node.URL)
	assert.Equal(t, 50, cfg.Demo.PageSize)
	assert.Equal(t, []string{"Notary", "PriceOracle"}, cfg.Demo.ServiceOrganisations)
	assert.Equal(t, 2*time.Minute, cfg.Demo.WorkflowWaitTimeout)
	assert.InDelta(t, 12.5, cfg.Throttle.RPS, 0.0001)
	assert.Equal(t, 20, cfg.Throttle.Burst)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
}

func TestFromEnv_EmptyServiceListDisablesFiltering(t *testing.T) {
	t.Setenv("SERVICE_ORGANISATIONS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.Demo.ServiceOrganisations)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"page size below one", "PAGE_SIZE", "0"},
		{"unknown log level", "LOG_LEVEL", "chatty"},
		{"node url not a url", "NODE_RPC_URL", "partya"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestFromEnv_UnparseableValuesFallBack(t *testing.T) {
	t.Setenv("PAGE_SIZE", "lots")
	t.Setenv("NODE_RPC_TIMEOUT", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.Demo.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Node.Timeout)
}

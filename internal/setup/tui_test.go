package setup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/papertrade/config"
)

func TestAnswers_DefaultsBuildValidConfig(t *testing.T) {
	cfg, err := defaultAnswers().config()
	require.NoError(t, err)
	assert.Equal(t, config.Default().DataDir, cfg.DataDir)
	assert.Equal(t, config.Default().TickInterval, cfg.TickInterval)
	assert.True(t, config.Default().StartingBalance.Equal(cfg.StartingBalance))
}

func TestAnswers_Postgres(t *testing.T) {
	a := defaultAnswers()
	a.driver = config.DriverPostgres
	a.postgresURL = " postgres://localhost/papertrade "
	a.tickInterval = "2s"
	a.startingBalance = "250.50"
	a.tlsDomains = "trade.example.com, ,paper.example.com"

	cfg, err := a.config()
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/papertrade", cfg.Storage.PostgresURL)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, "250.5", cfg.StartingBalance.String())
	assert.Equal(t, []string{"trade.example.com", "paper.example.com"}, cfg.Web.TLSDomains)
}

func TestAnswers_Invalid(t *testing.T) {
	a := defaultAnswers()
	a.driver = config.DriverPostgres
	_, err := a.config()
	assert.Error(t, err)

	a = defaultAnswers()
	a.tickInterval = "soon"
	_, err = a.config()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateInterval("5s"))
	assert.Error(t, validateInterval("0s"))
	assert.Error(t, validateInterval("five"))

	assert.NoError(t, validateBalance("100"))
	assert.Error(t, validateBalance("-1"))
	assert.Error(t, validateBalance("abc"))

	assert.Error(t, validateRequired("addr")("  "))
	assert.NoError(t, validateRequired("addr")(":8080"))
}

package testutil

import (
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/pkg/contracts/domain"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewTestLogger(nil)

	logger.With(slog.String("stage", "fit")).Warn("Pipeline warning", slog.String("kind", "SeparationWarning"))
	logger.Info("done", slog.Int("rows", 3))

	records := logs.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "fit", records[0].Attrs["stage"])
	assert.True(t, logs.ContainsAttr("kind", "SeparationWarning"))
	assert.Len(t, logs.RecordsAt(slog.LevelInfo), 1)

	AssertLogContains(t, logs, slog.LevelWarn, "Pipeline warning")
	AssertNoErrors(t, logs)
}

func TestShipmentRecords(t *testing.T) {
	records := ShipmentRecords(20)
	require.Len(t, records, 21)
	assert.Equal(t, domain.RequiredColumns(), records[0])

	weatherCol := -1
	for i, c := range records[0] {
		if c == domain.ColWeatherSeverity {
			weatherCol = i
		}
	}
	require.GreaterOrEqual(t, weatherCol, 0)

	for i, rec := range records[1:] {
		w, err := strconv.ParseFloat(rec[weatherCol], 64)
		require.NoError(t, err)
		if IsOnTime(i) {
			assert.Less(t, w, 2.0)
		} else {
			assert.GreaterOrEqual(t, w, 5.0)
		}
	}
}

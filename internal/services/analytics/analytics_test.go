package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vusdhub/vusd-station/internal/domain"
)

func record(ratio string) domain.TreasuryReportRecord {
	return domain.TreasuryReportRecord{
		Report: domain.TreasuryReport{
			CollateralizationRatio: decimal.RequireFromString(ratio),
			ComputedAt:             time.Now(),
		},
	}
}

func TestRatioHistory(t *testing.T) {
	records := []domain.TreasuryReportRecord{record("1.04"), record("1.05"), record("1.06")}

	points := RatioHistory(records)
	require.Len(t, points, 3)
	require.InDelta(t, 1.04, points[0].Ratio, 1e-9)
	require.InDelta(t, 1.06, points[2].Ratio, 1e-9)
}

func TestRatioSMA(t *testing.T) {
	points := RatioHistory([]domain.TreasuryReportRecord{
		record("1.00"), record("1.02"), record("1.04"), record("1.06"),
	})

	sma, err := RatioSMA(points, 2)
	require.NoError(t, err)
	require.NotEmpty(t, sma)
	require.InDelta(t, 1.05, sma[len(sma)-1], 1e-9)
}

func TestRatioSMA_NotEnoughData(t *testing.T) {
	_, err := RatioSMA([]RatioPoint{{Ratio: 1.0}}, 5)
	require.Error(t, err)
}

// Package analytics derives trend statistics from stored treasury report
// history for the dashboard.
package analytics

import (
	"fmt"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// RatioPoint is one collateralization-ratio observation.
type RatioPoint struct {
	ComputedAt time.Time `json:"computedAt"`
	Ratio      float64   `json:"ratio"`
}

// RatioHistory extracts the ratio series from stored report records, oldest
// first.
func RatioHistory(records []domain.TreasuryReportRecord) []RatioPoint {
	points := make([]RatioPoint, 0, len(records))
	for _, r := range records {
		ratio, _ := r.Report.CollateralizationRatio.Float64()
		points = append(points, RatioPoint{
			ComputedAt: r.Report.ComputedAt,
			Ratio:      ratio,
		})
	}
	return points
}

// RatioSMA computes the simple moving average of the collateralization ratio
// over the given period. Float precision is fine here: the series is bounded
// near 1 and only feeds the chart, never the valuation itself.
func RatioSMA(points []RatioPoint, period int) ([]float64, error) {
	if len(points) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(points))
	}

	ratios := make([]float64, len(points))
	for i, p := range points {
		ratios[i] = p.Ratio
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	outputChan := sma.Compute(helper.SliceToChan(ratios))

	return helper.ChanToSlice(outputChan), nil
}

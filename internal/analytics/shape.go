package analytics

import (
	"math"

	"dispatchboard/domain/metrics"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// jarqueBera is the chi-squared reference distribution (k = 2) for the
// Jarque-Bera normality statistic.
var jarqueBera = distuv.ChiSquared{K: 2}

// Shape computes distribution-shape markers for a bucket sample: skewness,
// excess kurtosis and a Jarque-Bera normality p-value. Degenerate samples
// (zero variance) report as non-normal with zero shape terms.
func Shape(values []float64, std float64) *metrics.ShapeStats {
	n := float64(len(values))
	if std == 0 || n < float64(shapeSampleFloor) {
		return &metrics.ShapeStats{}
	}

	skew := stat.Skew(values, nil)
	exKurt := stat.ExKurtosis(values, nil)

	jb := n / 6 * (skew*skew + exKurt*exKurt/4)
	p := 1 - jarqueBera.CDF(jb)
	if math.IsNaN(p) {
		p = 0
	}

	return &metrics.ShapeStats{
		Skewness: skew,
		Kurtosis: exKurt,
		IsNormal: p > 0.05,
		NormalP:  p,
	}
}

package analytics

import (
	"fmt"
	"math"
)

type AnomalyDetector struct {
	window    *Window
	threshold float64
}

func NewAnomalyDetector(size int, threshold float64) (*AnomalyDetector, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: anomaly threshold must be positive, got %g", ErrInvalidArgument, threshold)
	}
	window, err := NewWindow(size)
	if err != nil {
		return nil, err
	}
	return &AnomalyDetector{
		window:    window,
		threshold: threshold,
	}, nil
}

// Detect adds value to the detector's window and reports whether it lies more
// than threshold standard deviations from the window mean.
func (ad *AnomalyDetector) Detect(value int64) (bool, float64) {
	ad.window.Add(value)

	stdDev := ad.calculateStdDev()
	if stdDev == 0 {
		return false, 0.0
	}

	zScore := math.Abs((float64(value) - ad.window.Average()) / stdDev)

	return zScore > ad.threshold, zScore
}

func (ad *AnomalyDetector) calculateStdDev() float64 {
	values := ad.window.Snapshot()
	if len(values) < 2 {
		return 0.0
	}

	avg := ad.window.Average()
	var variance float64

	for _, v := range values {
		diff := float64(v) - avg
		variance += diff * diff
	}

	variance /= float64(len(values))
	return math.Sqrt(variance)
}

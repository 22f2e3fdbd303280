package models

import (
	"errors"
	"time"
)

type Sample struct {
	Timestamp string `json:"timestamp"`
	Key       string `json:"key"`
	Value     int64  `json:"value"`
}

func (s *Sample) Validate() error {
	if s.Key == "" {
		return errors.New("key is required")
	}

	if s.Timestamp == "" {
		return errors.New("timestamp is required")
	}

	if _, err := time.Parse(time.RFC3339, s.Timestamp); err != nil {
		return errors.New("invalid timestamp format, expected RFC3339")
	}

	return nil
}

func (s *Sample) ProcessedAt() time.Time {
	t, err := time.Parse(time.RFC3339, s.Timestamp)
	if err != nil {
		return time.Now()
	}
	return t
}

type AnalysisResult struct {
	Key            string    `json:"key"`
	Value          int64     `json:"value"`
	RollingAverage float64   `json:"rolling_average"`
	Fill           int       `json:"fill"`
	Oldest         int64     `json:"oldest"`
	IsAnomaly      bool      `json:"is_anomaly"`
	ZScore         float64   `json:"z_score"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// WindowState is a point-in-time copy of one key's window. Average is nil
// while the window is empty.
type WindowState struct {
	Key      string   `json:"key"`
	Capacity int      `json:"capacity"`
	Fill     int      `json:"fill"`
	Sum      int64    `json:"sum"`
	Average  *float64 `json:"average"`
	Oldest   int64    `json:"oldest"`
	Newest   int64    `json:"newest"`
	Samples  []int64  `json:"samples"`
}

package models

import (
	"fmt"
	"time"
)

// Bucket is one time-of-day window's running average.
type Bucket struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SampleSnapshot is a read-only copy of the sample buffer.
type SampleSnapshot struct {
	Current      float64       `json:"current"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	CurrentIndex int           `json:"current_index"`
	BucketWidth  time.Duration `json:"bucket_width_ns"`
	Buckets      []Bucket      `json:"buckets"`
}

// CurrentAverage is the stored average of the bucket holding the latest reading.
func (s SampleSnapshot) CurrentAverage() float64 {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Buckets) {
		return 0
	}
	return s.Buckets[s.CurrentIndex].Average
}

// ChartPoint is one labelled value of the day chart.
type ChartPoint struct {
	Label string  `json:"label"` // HH:MM start of the window
	Value float64 `json:"value"`
}

// Chart lists the buckets oldest first: the window after the current one
// starts the series and the current window ends it.
func (s SampleSnapshot) Chart() []ChartPoint {
	n := len(s.Buckets)
	out := make([]ChartPoint, 0, n)
	if n == 0 {
		return out
	}
	start := s.CurrentIndex + 1
	if start >= n {
		start = 0
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		out = append(out, ChartPoint{
			Label: windowLabel(idx, s.BucketWidth),
			Value: s.Buckets[idx].Average,
		})
	}
	return out
}

func windowLabel(idx int, width time.Duration) string {
	minutes := idx * int(width/time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

package metrics

import (
	"path/filepath"
	"time"

	"github.com/nakabonne/tstorage"
)

// Sales and system gauges are kept in an embedded time-series store under
// the application workdir. A nil storage (metrics disabled or init failed)
// turns every call into a no-op.
var storage tstorage.Storage

const (
	SalesTotal   = "sales_total"
	SystemCPUUse = "system_cpuuse"
	SystemMemUse = "system_memuse"
)

// InitMetrics opens the time-series storage under workdir/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records an instantaneous gauge value.
func SetGauge(name string, value int64) {
	InsertSample(name, float64(value))
}

// InsertSample appends one data point with the current timestamp.
func InsertSample(name string, value float64) {
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// QueryRange returns all points for a metric between start and end (unix seconds).
func QueryRange(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	if storage == nil {
		return nil, nil
	}
	points, err := storage.Select(name, nil, start, end)
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

func Close() error {
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}

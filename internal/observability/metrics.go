package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	recordWriteTotal  *prometheus.CounterVec
	recordRemoveTotal *prometheus.CounterVec
	recordReadTotal   prometheus.Counter
	readMissTotal     *prometheus.CounterVec

	recordWriteDuration prometheus.Histogram
	recordReadDuration  prometheus.Histogram
	lockWaitDuration    prometheus.Histogram
	lockTableSize       prometheus.Gauge

	credsSaveTotal    prometheus.Counter
	credsSaveDuration prometheus.Histogram

	sweepRunTotal     *prometheus.CounterVec
	sweepRemovedTotal prometheus.Counter
	watcherEventTotal *prometheus.CounterVec

	sqliteOpDuration *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			recordWriteTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "walet_record_write_total",
					Help: "Total record writes by status.",
				},
				[]string{"status"},
			),
			recordRemoveTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "walet_record_remove_total",
					Help: "Total record removals by status.",
				},
				[]string{"status"},
			),
			recordReadTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "walet_record_read_total",
					Help: "Total record read attempts.",
				},
			),
			readMissTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "walet_read_miss_total",
					Help: "Total reads folded to absent by failure class.",
				},
				[]string{"class"},
			),
			recordWriteDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "walet_record_write_duration_seconds",
					Help:    "Record write duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			recordReadDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "walet_record_read_duration_seconds",
					Help:    "Record read duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			lockWaitDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "walet_lock_wait_duration_seconds",
					Help:    "Time spent waiting for a per path lock in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			lockTableSize: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "walet_lock_table_size",
					Help: "Number of distinct paths in the lock table.",
				},
			),
			credsSaveTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "walet_creds_save_total",
					Help: "Total credential bundle saves.",
				},
			),
			credsSaveDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "walet_creds_save_duration_seconds",
					Help:    "Credential bundle save duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			sweepRunTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "walet_sweep_run_total",
					Help: "Total maintenance sweep runs by status.",
				},
				[]string{"status"},
			),
			sweepRemovedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "walet_sweep_removed_total",
					Help: "Total stale files removed by maintenance sweeps.",
				},
			),
			watcherEventTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "walet_watcher_event_total",
					Help: "Total directory watcher events by op.",
				},
				[]string{"op"},
			),
			sqliteOpDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "walet_sqlite_op_duration_seconds",
					Help:    "SQLite store operation duration in seconds by op.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"op"},
			),
		}

		prometheus.MustRegister(
			m.recordWriteTotal,
			m.recordRemoveTotal,
			m.recordReadTotal,
			m.readMissTotal,
			m.recordWriteDuration,
			m.recordReadDuration,
			m.lockWaitDuration,
			m.lockTableSize,
			m.credsSaveTotal,
			m.credsSaveDuration,
			m.sweepRunTotal,
			m.sweepRemovedTotal,
			m.watcherEventTotal,
			m.sqliteOpDuration,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordWrite(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.recordWriteTotal.WithLabelValues(status).Inc()
	m.recordWriteDuration.Observe(duration.Seconds())
}

func RecordRemove(success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.recordRemoveTotal.WithLabelValues(status).Inc()
}

func RecordRead(duration time.Duration) {
	m := getMetrics()
	m.recordReadTotal.Inc()
	m.recordReadDuration.Observe(duration.Seconds())
}

func RecordReadMiss(class string) {
	m := getMetrics()
	m.readMissTotal.WithLabelValues(class).Inc()
}

func RecordLockWait(duration time.Duration) {
	m := getMetrics()
	m.lockWaitDuration.Observe(duration.Seconds())
}

func SetLockTableSize(size int) {
	m := getMetrics()
	m.lockTableSize.Set(float64(size))
}

func RecordCredsSave(duration time.Duration) {
	m := getMetrics()
	m.credsSaveTotal.Inc()
	m.credsSaveDuration.Observe(duration.Seconds())
}

func RecordSweepRun(success bool, removed int) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.sweepRunTotal.WithLabelValues(status).Inc()
	m.sweepRemovedTotal.Add(float64(removed))
}

func RecordWatcherEvent(op string) {
	m := getMetrics()
	m.watcherEventTotal.WithLabelValues(op).Inc()
}

func RecordSQLiteOp(op string, duration time.Duration) {
	m := getMetrics()
	m.sqliteOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

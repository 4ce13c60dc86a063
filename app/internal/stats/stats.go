// Package stats замеряет операции сессии с БД, отдаёт их в Prometheus
// и рисует графики через go-echarts.
package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot - срез статистики, который отдаёт /stats.
type Snapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	Rows            int       `json:"rows"`
	Loads           int64     `json:"loads"`
	Inserts         int64     `json:"inserts"`
	InsertFailures  int64     `json:"insert_failures"`
	AvgLoadTimeMs   float64   `json:"avg_load_time_ms"`
	AvgInsertTimeMs float64   `json:"avg_insert_time_ms"`
}

// Recorder реализует session.Recorder.
type Recorder struct {
	registry *prometheus.Registry
	inserts  *prometheus.CounterVec
	loads    prometheus.Counter
	duration *prometheus.HistogramVec
	rowCount prometheus.Gauge

	mu             sync.Mutex
	rows           int
	loadCount      int64
	loadTotal      time.Duration
	insertCount    int64
	insertFailures int64
	insertTotal    time.Duration
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersgrid_inserts_total",
			Help: "Rows submitted from the form, by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usersgrid_loads_total",
			Help: "Reloads of the grid from the database.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usersgrid_operation_seconds",
			Help:    "Time spent in database operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		rowCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "usersgrid_rows",
			Help: "Rows shown in the grid after the last load.",
		}),
	}
	r.registry.MustRegister(r.inserts, r.loads, r.duration, r.rowCount)
	return r
}

// Handler отдаёт метрики в формате Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveLoad(d time.Duration, rows int, err error) {
	if err != nil {
		return
	}
	r.loads.Inc()
	r.duration.WithLabelValues("load").Observe(d.Seconds())
	r.rowCount.Set(float64(rows))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.loadCount++
	r.loadTotal += d
}

func (r *Recorder) ObserveInsert(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.inserts.WithLabelValues(result).Inc()
	r.duration.WithLabelValues("insert").Observe(d.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCount++
	r.insertTotal += d
	if err != nil {
		r.insertFailures++
	}
}

// Snapshot усредняет всё, что было замерено.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Timestamp:      time.Now(),
		Rows:           r.rows,
		Loads:          r.loadCount,
		Inserts:        r.insertCount,
		InsertFailures: r.insertFailures,
	}
	if r.loadCount > 0 {
		s.AvgLoadTimeMs = float64(r.loadTotal.Microseconds()) / 1000 / float64(r.loadCount)
	}
	if r.insertCount > 0 {
		s.AvgInsertTimeMs = float64(r.insertTotal.Microseconds()) / 1000 / float64(r.insertCount)
	}
	return s
}

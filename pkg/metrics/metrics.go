package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbPoolOpen      prometheus.Gauge
	dbPoolIdle      prometheus.Gauge
	dbPoolInUse     prometheus.Gauge

	reservationOps    *prometheus.CounterVec
	ledgerCorruptions prometheus.Counter
	workerRuns        *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	m := &Metrics{
		serviceName: serviceName,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		dbQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "db_queries_total",
				Help:        "Total number of database queries.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "status"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query duration in seconds.",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		dbPoolOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open database connections.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),
		dbPoolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle database connections.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),
		dbPoolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of database connections in use.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),

		reservationOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reservation_operations_total",
				Help:        "Reservation lifecycle operations by result.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "result"},
		),
		ledgerCorruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "capacity_ledger_corruptions_total",
			Help:        "Detected capacity ledger corruptions (frozen keys).",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),
		workerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "worker_runs_total",
				Help:        "Background worker iterations by result.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"worker", "result"},
		),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueriesTotal,
		m.dbQueryDuration,
		m.dbPoolOpen,
		m.dbPoolIdle,
		m.dbPoolInUse,
		m.reservationOps,
		m.ledgerCorruptions,
		m.workerRuns,
	)

	return m
}

// ObserveHTTPRequest записывает метрики обработанного HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery записывает метрики выполненного запроса к БД
func (m *Metrics) ObserveDBQuery(operation, status string, duration time.Duration) {
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет метрики connection pool
func (m *Metrics) SetDBPoolStats(open, idle, inUse int) {
	m.dbPoolOpen.Set(float64(open))
	m.dbPoolIdle.Set(float64(idle))
	m.dbPoolInUse.Set(float64(inUse))
}

// IncReservationOp увеличивает счетчик операции над бронированием
// operation: request, confirm, cancel, check_in, complete, no_show, hold_expire
// result: ok, rejected, error
func (m *Metrics) IncReservationOp(operation, result string) {
	m.reservationOps.WithLabelValues(operation, result).Inc()
}

// IncLedgerCorruption увеличивает счетчик повреждений capacity ledger
func (m *Metrics) IncLedgerCorruption() {
	m.ledgerCorruptions.Inc()
}

// IncWorkerRun увеличивает счетчик итераций фонового воркера
func (m *Metrics) IncWorkerRun(worker, result string) {
	m.workerRuns.WithLabelValues(worker, result).Inc()
}

package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBDurationBuckets are query latency buckets in seconds
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DefaultSlowQueryThreshold marks queries as slow
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type dbMetricsContextKey struct{}

// DBMetrics is a GORM plugin counting and timing statements by operation
// and table
type DBMetrics struct {
	queries   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	slow      *prometheus.CounterVec
	threshold time.Duration
	reg       prometheus.Registerer
	logger    *zap.Logger
}

// NewDBMetrics creates the collectors on reg. A zero threshold uses
// DefaultSlowQueryThreshold.
func NewDBMetrics(reg prometheus.Registerer, threshold time.Duration, logger *zap.Logger) *DBMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultSlowQueryThreshold
	}
	factory := promauto.With(reg)
	return &DBMetrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Database statements by operation, table and outcome",
		}, []string{"operation", "table", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database statement latency in seconds",
			Buckets: DBDurationBuckets,
		}, []string{"operation", "table"}),
		slow: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_slow_queries_total",
			Help: "Statements slower than the slow query threshold",
		}, []string{"operation", "table"}),
		threshold: threshold,
		reg:       reg,
		logger:    logger,
	}
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return "db_metrics"
}

// Initialize implements gorm.Plugin. It registers timing callbacks around
// every statement kind and, when a registerer was given, the connection
// pool collector.
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", m.before),
		cb.Create().After("gorm:create").Register("db_metrics:after_create", m.after("INSERT")),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", m.before),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", m.after("SELECT")),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", m.before),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", m.after("UPDATE")),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", m.before),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", m.after("DELETE")),
		cb.Row().Before("gorm:row").Register("db_metrics:before_row", m.before),
		cb.Row().After("gorm:row").Register("db_metrics:after_row", m.after("")),
		cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", m.before),
		cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", m.after("")),
	)
	if err != nil {
		return err
	}

	if m.reg != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := m.reg.Register(collectors.NewDBStatsCollector(sqlDB, db.Dialector.Name())); err != nil {
			m.logger.Warn("Connection pool collector not registered", zap.Error(err))
		}
	}
	return nil
}

func (m *DBMetrics) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, dbMetricsContextKey{}, time.Now())
}

// after records a finished statement. An empty op is detected from the SQL.
func (m *DBMetrics) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		operation := op
		if operation == "" {
			operation = DetectOperation(db.Statement.SQL.String())
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		outcome := "success"
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			outcome = "error"
		}
		m.queries.WithLabelValues(operation, table, outcome).Inc()

		start, ok := db.Statement.Context.Value(dbMetricsContextKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		m.duration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
		if elapsed >= m.threshold {
			m.slow.WithLabelValues(operation, table).Inc()
			m.logger.Warn("Slow query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}

// DetectOperation returns the leading SQL verb of a statement
func DetectOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}

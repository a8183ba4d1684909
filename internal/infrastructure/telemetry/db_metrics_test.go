package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "metrics.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDBMetrics(t *testing.T) {
	db := newSQLiteDB(t)
	reg := prometheus.NewRegistry()
	metrics := NewDBMetrics(reg, time.Nanosecond, nil)
	require.NoError(t, db.Use(metrics))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var got widget
	require.NoError(t, db.First(&got).Error)
	assert.ErrorIs(t, db.Where("name = ?", "missing").First(&widget{}).Error, gorm.ErrRecordNotFound)
	require.NoError(t, db.Model(&widget{}).Where("id = ?", got.ID).Update("name", "b").Error)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.queries.WithLabelValues("INSERT", "widgets", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.queries.WithLabelValues("SELECT", "widgets", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.queries.WithLabelValues("UPDATE", "widgets", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.slow.WithLabelValues("INSERT", "widgets")))

	n, err := testutil.GatherAndCount(reg, "go_sql_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDetectOperation(t *testing.T) {
	tests := map[string]string{
		"  select 1":                       "SELECT",
		"INSERT INTO messages (name)":      "INSERT",
		"update customers set name = 'x'":  "UPDATE",
		"DELETE FROM customers":            "DELETE",
		"CREATE TABLE IF NOT EXISTS x (y)": "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, DetectOperation(sql), sql)
	}
}

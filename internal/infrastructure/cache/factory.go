package cache

import (
	"context"
	"fmt"

	"github.com/contactdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Durable storage backends
const (
	BackendRedis  = "redis"
	BackendSQL    = "sql"
	BackendMemory = "memory"
)

// StorageFactory builds the durable and session storages for the manager
type StorageFactory struct {
	redisConfig   config.RedisConfig
	managerConfig config.ManagerConfig
	logger        *zap.Logger
	db            *gorm.DB
	allowFallback bool
}

// StorageFactoryOption is a functional option for configuring the factory
type StorageFactoryOption func(*StorageFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StorageFactoryOption {
	return func(f *StorageFactory) {
		f.logger = logger
	}
}

// WithDB makes the sql backend reuse an open connection instead of a local file
func WithDB(db *gorm.DB) StorageFactoryOption {
	return func(f *StorageFactory) {
		f.db = db
	}
}

// WithMemoryFallback controls whether an unavailable durable backend
// degrades to in-memory storage. Overrides the configured value.
func WithMemoryFallback(allow bool) StorageFactoryOption {
	return func(f *StorageFactory) {
		f.allowFallback = allow
	}
}

// NewStorageFactory creates a new factory
func NewStorageFactory(redisCfg config.RedisConfig, managerCfg config.ManagerConfig, opts ...StorageFactoryOption) *StorageFactory {
	f := &StorageFactory{
		redisConfig:   redisCfg,
		managerConfig: managerCfg,
		logger:        zap.NewNop(),
		allowFallback: managerCfg.AllowFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStorage connects to Redis
func (f *StorageFactory) CreateRedisStorage() (Storage, error) {
	store, err := NewRedisStorage(RedisConfig{
		Host:      f.redisConfig.Host,
		Port:      f.redisConfig.Port,
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: DefaultRedisKeyPrefix + f.managerConfig.Namespace + ":",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis storage: %w", err)
	}
	return store, nil
}

// CreateSQLStorage uses the injected connection, or opens the configured
// SQLite file when there is none
func (f *StorageFactory) CreateSQLStorage(ctx context.Context) (Storage, error) {
	db := f.db
	var closer func() error
	if db == nil {
		opened, err := gorm.Open(sqlite.Open(f.managerConfig.StoragePath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.managerConfig.StoragePath, err)
		}
		db = opened
		closer = func() error {
			sqlDB, err := opened.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	}

	store := NewSQLStorage(db, f.managerConfig.Namespace)
	store.closer = closer
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// CreateDurable builds the storage behind the durable mirror. When the
// configured backend fails and fallback is allowed, it degrades to memory.
func (f *StorageFactory) CreateDurable(ctx context.Context) (Storage, error) {
	var (
		store Storage
		err   error
	)
	switch f.managerConfig.DurableBackend {
	case BackendRedis:
		store, err = f.CreateRedisStorage()
	case BackendSQL:
		store, err = f.CreateSQLStorage(ctx)
	case BackendMemory, "":
		return NewMemoryStorage(), nil
	default:
		err = fmt.Errorf("unknown durable backend %q", f.managerConfig.DurableBackend)
	}
	if err == nil {
		f.logger.Info("using durable storage", zap.String("backend", f.managerConfig.DurableBackend))
		return store, nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("durable storage unavailable: %w", err)
	}

	f.logger.Warn("Durable storage unavailable, falling back to in-memory storage. "+
		"Cached customers will not survive a restart.",
		zap.String("backend", f.managerConfig.DurableBackend),
		zap.Error(err),
	)
	return NewMemoryStorage(), nil
}

// CreateSession builds the session-scoped storage
func (f *StorageFactory) CreateSession() Storage {
	return NewMemoryStorage(WithSessionTTL(f.managerConfig.SessionTTL))
}

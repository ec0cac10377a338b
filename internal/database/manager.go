package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Manager owns the connections. Mongo is required; Postgres (audit) and
// Redis (cache) are optional and nil when not configured.
type Manager struct {
	Mongo  *mongo.Client
	DB     *gorm.DB
	Redis  *redis.Client
	config *Config
	logger *logrus.Logger
}

// Database configuration
type Config struct {
	MongoURI    string
	MongoDB     string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
}

// NewManager connects to every configured backend.
func NewManager(ctx context.Context, config *Config, log *logrus.Logger) (*Manager, error) {
	m := &Manager{config: config, logger: log}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(config.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(10*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	m.Mongo = client
	log.Info("MongoDB connected")

	if config.DatabaseURL != "" {
		if err := m.openPostgres(); err != nil {
			m.Close()
			return nil, err
		}
		log.Info("Audit database connected")
	}

	if config.RedisURL != "" {
		if err := m.openRedis(connectCtx); err != nil {
			m.Close()
			return nil, err
		}
		log.Info("Redis connected")
	}

	return m, nil
}

func (m *Manager) openPostgres() error {
	// Configure GORM logger
	var gormLogger logger.Interface
	switch m.config.LogLevel {
	case "debug":
		gormLogger = logger.New(
			m.logger,
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	default:
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(m.config.DatabaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m.DB = db
	return nil
}

func (m *Manager) openRedis(ctx context.Context) error {
	redisOpts, err := redis.ParseURL(m.config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.PoolSize = 20
	redisOpts.MinIdleConns = 5
	redisOpts.MaxConnAge = time.Hour
	redisOpts.IdleTimeout = 30 * time.Minute

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.Redis = client
	return nil
}

// Collection returns a handle on the student collection.
func (m *Manager) Collection(name string) *mongo.Collection {
	return m.Mongo.Database(m.config.MongoDB).Collection(name)
}

// Migrate creates the audit tables.
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return nil
	}
	m.logger.Info("Running database migrations...")
	return m.DB.AutoMigrate(&models.LookupAudit{})
}

// Close closes all connections
func (m *Manager) Close() error {
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close Redis connection")
		}
	}

	if m.DB != nil {
		if sqlDB, err := m.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				m.logger.WithError(err).Error("Failed to close database connection")
			}
		}
	}

	if m.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return m.Mongo.Disconnect(ctx)
	}

	return nil
}

// Health check methods
func (m *Manager) PingMongo(ctx context.Context) error {
	return m.Mongo.Ping(ctx, readpref.Primary())
}

func (m *Manager) PingDatabase() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (m *Manager) PingRedis(ctx context.Context) error {
	return m.Redis.Ping(ctx).Err()
}

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	LookupResultsKey = "lookup:results:%s"
)

// CacheLookupResults caches the records found for a filter key
func (c *Cache) CacheLookupResults(ctx context.Context, key string, records []models.StudentRecord, expiration time.Duration) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup results: %w", err)
	}

	return c.client.Set(ctx, fmt.Sprintf(LookupResultsKey, key), data, expiration).Err()
}

// GetCachedLookupResults retrieves cached records. A miss returns redis.Nil.
func (c *Cache) GetCachedLookupResults(ctx context.Context, key string) ([]models.StudentRecord, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(LookupResultsKey, key)).Bytes()
	if err != nil {
		return nil, err
	}

	var records []models.StudentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ClearLookupCache removes every cached lookup result. Used after the
// collection changes.
func (c *Cache) ClearLookupCache(ctx context.Context) (int, error) {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(LookupResultsKey, "*"), 100).Iterator()
	removed := 0
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	c.logger.WithField("keys", removed).Debug("Lookup cache cleared")
	return removed, nil
}

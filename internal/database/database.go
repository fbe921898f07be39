package database

import (
	"context"
	"fmt"
	"time"

	"exercisetracker/internal/config"
	"exercisetracker/internal/models"
	"exercisetracker/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Users     repositories.UserRepository
	Exercises repositories.ExerciseRepository
	Driver    string

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the configured backend and prepares its schema. An
// unreachable store is an error.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverPostgres:
		return openGORM(ctx, postgres.Open(cfg.DatabaseDSN), cfg.DBDriver, log)
	case config.DriverSQLite:
		return openGORM(ctx, sqlite.Open(cfg.DatabaseDSN), cfg.DBDriver, log)
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *Store {
	return &Store{
		Users:     repositories.NewMemoryUserRepository(),
		Exercises: repositories.NewMemoryExerciseRepository(),
		Driver:    config.DriverMemory,
	}
}

// NewGORMStore wraps an open GORM connection, migrating the schema first.
func NewGORMStore(db *gorm.DB, driver string) (*Store, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Exercise{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	return &Store{
		Users:     repositories.NewGORMUserRepository(db),
		Exercises: repositories.NewGORMExerciseRepository(db),
		Driver:    driver,
		ping:      sqlDB.PingContext,
		close:     sqlDB.Close,
	}, nil
}

func openGORM(ctx context.Context, dialector gorm.Dialector, driver string, log logrus.FieldLogger) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach %s: %w", driver, err)
	}

	store, err := NewGORMStore(db, driver)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.WithField("driver", driver).Info("database connected")
	return store, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.StoreTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	exercises := repositories.NewMongoExerciseRepository(db)
	if err := exercises.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", cfg.MongoDatabase).Info("MongoDB connected")
	return &Store{
		Users:     repositories.NewMongoUserRepository(db),
		Exercises: exercises,
		Driver:    config.DriverMongo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}

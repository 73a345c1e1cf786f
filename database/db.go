package database

import (
	"context"
	"fmt"
	"time"

	"decorbook/config"
	bookingRepo "decorbook/database/repository/booking"
	contactRepo "decorbook/database/repository/contact"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Store bundles the repositories of one storage backend.
type Store struct {
	Driver   string
	Bookings bookingRepo.BookingRepository
	Contacts contactRepo.ContactRepository

	close func(ctx context.Context) error
}

// Ping checks the backend behind the booking repository.
func (s *Store) Ping(ctx context.Context) error {
	return s.Bookings.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend named by STORAGE_DRIVER and prepares its
// indexes or tables.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.StorageDriver {
	case "mongo":
		return openMongoStore(ctx, cfg, logger)
	case "postgres":
		db, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return gormStore(ctx, "postgres", db, logger)
	case "sqlite":
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return gormStore(ctx, "sqlite", db, logger)
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		return &Store{
			Driver:   "memory",
			Bookings: bookingRepo.NewMemoryBookingRepo(),
			Contacts: contactRepo.NewMemoryContactRepo(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ConnectMongo dials uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func openMongoStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	client, err := ConnectMongo(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DatabaseName)

	bookings, err := bookingRepo.NewMongoBookingRepo(ctx, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	contacts, err := contactRepo.NewMongoContactRepo(ctx, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.DatabaseName))
	return &Store{
		Driver:   "mongo",
		Bookings: bookings,
		Contacts: contacts,
		close:    client.Disconnect,
	}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// OpenSQLite opens path with a single connection; sqlite serializes writers
// anyway and ":memory:" databases are per connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormStore(ctx context.Context, driver string, db *gorm.DB, logger *zap.Logger) (*Store, error) {
	closeDB := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	bookings := bookingRepo.NewGormBookingRepo(db)
	if err := bookings.Migrate(ctx); err != nil {
		_ = closeDB(ctx)
		return nil, fmt.Errorf("migrate bookings: %w", err)
	}
	contacts := contactRepo.NewGormContactRepo(db)
	if err := contacts.Migrate(ctx); err != nil {
		_ = closeDB(ctx)
		return nil, fmt.Errorf("migrate contacts: %w", err)
	}
	logger.Info("storage ready", zap.String("driver", driver))
	return &Store{Driver: driver, Bookings: bookings, Contacts: contacts, close: closeDB}, nil
}

// NewRedisClient builds a client and checks it answers.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", addr, err)
	}
	return client, nil
}

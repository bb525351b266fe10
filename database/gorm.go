package database

import (
	"fmt"
	"time"

	"github.com/sahilchouksey/campus-events/config"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Storage is the lifecycle surface the app needs from a database
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() *gorm.DB
}

// Models lists every table managed by AutoMigrate, parents first
var Models = []interface{}{
	&model.User{},
	&model.Event{},
	&model.EventCoordinator{},
	&model.EventImage{},
	&model.EventCoverImage{},
	&model.EventReport{},
	&model.CronJobLog{},
}

type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore wraps an open connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// DSN builds the PostgreSQL connection string
func DSN(env *config.EnviornmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnviornmentVariable) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if env.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		logger.Error().Err(err).Str("host", env.DB_HOST).Msg("unable to connect to PostgreSQL")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info().Str("host", env.DB_HOST).Str("db", env.DB_NAME).Msg("connected to PostgreSQL")

	return NewGORMStore(db), nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	if err := s.db.AutoMigrate(Models...); err != nil {
		logger.Error().Err(err).Msg("AutoMigrate failed")
		return err
	}

	logger.Info().Int("models", len(Models)).Msg("AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

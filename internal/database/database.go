package database

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// DB is the global database instance
var DB *gorm.DB

// InitDB initializes the database connection and performs migrations.
// DB_DRIVER selects postgres (default) or sqlite; sqlite keeps single-node
// deployments dependency-free while postgres serves shared installs.
func InitDB() (*gorm.DB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	dialector, err := openDialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	// Set global DB instance
	DB = db

	logrus.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate runs schema migrations for all models
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Presentation{},
		&models.Slide{},
		&models.GenerationTask{},
		&models.WebhookSubscription{},
		&models.Asset{},
		&models.Template{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func openDialector() (gorm.Dialector, error) {
	driver := getEnv("DB_DRIVER", "postgres")

	switch driver {
	case "sqlite":
		path := getEnv("DB_PATH", "slidecraft.db")
		return sqlite.Open(path), nil

	case "postgres":
		host := getEnv("DB_HOST", "")
		port := getEnv("DB_PORT", "")
		user := getEnv("DB_USER", "")
		password := getEnv("DB_PASSWORD", "")
		dbname := getEnv("DB_NAME", "")
		sslmode := getEnv("DB_SSLMODE", "disable")

		if host == "" || port == "" || user == "" || password == "" || dbname == "" {
			return nil, fmt.Errorf("missing required database environment variables. Please check your .env file")
		}

		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
		return postgres.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

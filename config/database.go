package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

// ErrDatabaseDisabled is returned when no DB_HOST is configured; history is then not recorded.
var ErrDatabaseDisabled = errors.New("history database disabled (DB_HOST not set)")

func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the global history database. Used by tools and tests.
func SetDB(conn *gorm.DB) {
	db = conn
}

func databaseDSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = os.Getenv("DB_USER")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	dbHost := os.Getenv("DB_HOST")
	// Cloud SQL: DB_HOST=/cloudsql/<CONNECTION_NAME> connects over the proxy's unix socket.
	if strings.HasPrefix(dbHost, "/cloudsql/") {
		cfg.Net = "unix"
		cfg.Addr = dbHost
	} else {
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%s", dbHost, os.Getenv("DB_PORT"))
	}
	return cfg.FormatDSN()
}

// ConnectDatabaseWithRetry connects and sets the global DB.
// Call this from main() AFTER the HTTP server is listening.
// DB_CONNECT_ATTEMPTS bounds the retries (default 5, 0 = forever).
func ConnectDatabaseWithRetry() error {
	if strings.TrimSpace(os.Getenv("DB_HOST")) == "" {
		return ErrDatabaseDisabled
	}
	maxAttempts := intFromEnv("DB_CONNECT_ATTEMPTS", 5)

	var attempt int
	for {
		attempt++
		conn, err := gorm.Open(mysql.Open(databaseDSN()), initConfig())
		if err == nil {
			if sqlDB, derr := conn.DB(); derr == nil && sqlDB != nil {
				sqlDB.SetMaxOpenConns(intFromEnv("DB_MAX_OPEN_CONNS", 10))
				sqlDB.SetMaxIdleConns(intFromEnv("DB_MAX_IDLE_CONNS", 5))
				sqlDB.SetConnMaxLifetime(time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
			}
			if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			db = conn
			log.Printf("connected to history database (attempt=%d)", attempt)
			return nil
		}

		if maxAttempts > 0 && attempt >= maxAttempts {
			return fmt.Errorf("connect history database after %d attempts: %w", attempt, err)
		}
		sleep := backoff(attempt)
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}

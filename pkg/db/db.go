package db

import (
	"fmt"
	"log"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

// GetInstance returns the process wide connection, opening it on first use.
func GetInstance(dialector gorm.Dialector) *DB {
	once.Do(func() {
		var err error
		instance, err = Open(dialector)
		if err != nil {
			log.Fatal("Failed to open database: ", err)
		}
	})
	return instance
}

// Open connects and migrates a new database handle. Tests use it with
// UseNamedMemorySqliteDialector to get an isolated database each.
func Open(dialector gorm.Dialector) (*DB, error) {
	var logger = common.GetLogger()

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	if dialector.Name() == "sqlite" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("get sqlite handle: %w", err)
		}
		// one connection keeps a shared-cache memory database alive and avoids SQLITE_LOCKED
		sqlDB.SetMaxOpenConns(1)

		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign key support: %w", err)
		}

		if err := conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, fmt.Errorf("set sqlite journal mode: %w", err)
		}
	}

	err = conn.AutoMigrate(
		&models.Resource{},
		&models.HistoryEntry{},
		&models.Delivery{},
		&models.Alert{},
		&models.ThresholdSetting{},
		&models.CrewMember{},
		&models.EngineState{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("Database migration completed")

	return &DB{Conn: conn}, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func UseSqliteDialector(dbPath string) gorm.Dialector {
	if dbPath == "" {
		dbPath = "vessel.db"
	}
	return sqlite.Open(dbPath)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}

func UseNamedMemorySqliteDialector(name string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

func UsePostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// UseDialector maps a configured database type to its dialector.
func UseDialector(dbType, path, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "file":
		return UseSqliteDialector(path), nil
	case "memory":
		return UseMemorySqliteDialector(), nil
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres database type requires a dsn")
		}
		return UsePostgresDialector(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database type %q", dbType)
	}
}

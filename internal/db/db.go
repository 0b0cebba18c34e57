package db

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"room-booking-backend/config"
	"room-booking-backend/internal/model"
)

// Init opens the configured database and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := open(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("running database migrations", zap.String("driver", cfg.Driver))
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnforceRoomExclusion {
		if cfg.Driver != "postgres" {
			log.Warn("room exclusion constraint requires postgres, skipping", zap.String("driver", cfg.Driver))
		} else if err := applyRoomExclusionDDL(db); err != nil {
			log.Warn("failed to apply room exclusion constraint, continuing without it", zap.Error(err))
		} else {
			log.Info("room exclusion constraint in place")
		}
	}

	log.Info("database initialization complete")
	return db, nil
}

func open(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, errors.New("unsupported database driver: " + cfg.Driver)
	}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Reservation{},
		&model.Staff{},
		&model.PushSubscription{},
		&model.RoomWatch{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// roomExclusionDDL rejects two reservations of one room whose [start, end) ranges overlap.
// Rows missing a bound are left out; tstzrange would read them as unbounded.
var roomExclusionDDL = []string{
	"CREATE EXTENSION IF NOT EXISTS btree_gist;",
	`DO $$
BEGIN
	ALTER TABLE reservations
		ADD CONSTRAINT reservations_room_no_overlap
		EXCLUDE USING gist (room WITH =, tstzrange(start_at, end_at, '[)') WITH &&)
		WHERE (start_at IS NOT NULL AND end_at IS NOT NULL);
EXCEPTION
	WHEN duplicate_object THEN NULL;
	WHEN duplicate_table THEN NULL;
END $$;`,
}

func applyRoomExclusionDDL(db *gorm.DB) error {
	for _, ddl := range roomExclusionDDL {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}

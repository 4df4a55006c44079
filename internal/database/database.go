package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/config"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// BuildDSN builds the PostgreSQL DSN.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// Connect opens the database and configures the connection pool.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 100
	}
	maxLifetime := cfg.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = 3600
	}
	maxIdleTime := cfg.ConnMaxIdleTime
	if maxIdleTime == 0 {
		maxIdleTime = 600
	}

	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(maxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(maxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry opens the database, retrying with exponential
// backoff while it comes up.
func ConnectWithRetry(cfg config.DatabaseConfig, attempts int, initial time.Duration) (*gorm.DB, error) {
	var lastErr error
	wait := initial
	for i := 0; i < attempts; i++ {
		db, err := Connect(cfg)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return nil, fmt.Errorf("database not reachable after %d attempts: %w", attempts, lastErr)
}

// Migrate creates or updates the schema and seeds the approval
// configuration when none exists.
func Migrate(db *gorm.DB, defaultThreshold string) error {
	if err := db.AutoMigrate(
		&model.PurchaseRequestModel{},
		&model.RequestItemModel{},
		&model.QuotationModel{},
		&model.QuotationItemModel{},
		&model.SupplierQuotationModel{},
		&model.SupplierQuotationItemModel{},
		&model.PurchaseOrderModel{},
		&model.ApprovalHistoryModel{},
		&model.ApprovalConfigurationModel{},
		&model.PhaseHistoryModel{},
		&model.EventModel{},
		&model.AuditLogModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	// gorm resolves the composite name awkwardly, migrate it explicitly
	if err := db.AutoMigrate(&model.PurchaseOrderItemModel{}); err != nil {
		return fmt.Errorf("failed to migrate order items: %w", err)
	}

	return seedApprovalConfiguration(db, defaultThreshold)
}

// seedApprovalConfiguration installs the initial threshold when the
// table is empty so the policy engine always has an active row.
func seedApprovalConfiguration(db *gorm.DB, defaultThreshold string) error {
	var count int64
	if err := db.Model(&model.ApprovalConfigurationModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count configurations: %w", err)
	}
	if count > 0 {
		return nil
	}

	threshold, err := decimal.NewFromString(defaultThreshold)
	if err != nil {
		return fmt.Errorf("invalid default threshold %q: %w", defaultThreshold, err)
	}

	return db.Create(&model.ApprovalConfigurationModel{
		ID:            uuid.NewString(),
		Threshold:     threshold,
		EffectiveFrom: time.Now(),
		Active:        true,
		CreatedBy:     "system",
		CreatedAt:     time.Now(),
	}).Error
}

package infra

import (
	"fmt"

	"vitalexa/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies AutoMigrate plus schema patches. Also used by
// integration tests against a scratch database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.ProductTag{},
		&model.Product{},
		&model.SpecialProduct{},
		&model.InventoryMovement{},
		&model.Promotion{},
		&model.PromotionGiftItem{},
		&model.SpecialPromotion{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderDiscount{},
		&model.Payment{},
		&model.PaymentTransfer{},
		&model.VendorPayrollConfig{},
		&model.SaleGoal{},
		&model.Payroll{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Invoice numbers come from a dedicated sequence so completion order,
		// not creation order, decides numbering. Historical backfill re-syncs
		// it with setval.
		`CREATE SEQUENCE IF NOT EXISTS orders_invoice_number_seq START 1`,
		// Invoice numbers are unique among the orders that have one.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_orders_invoice_number') THEN
		    CREATE UNIQUE INDEX idx_orders_invoice_number
		        ON orders (invoice_number)
		        WHERE invoice_number IS NOT NULL;
		  END IF;
		END $$`,
		// Open-order scan for committed stock.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_orders_estado_open') THEN
		    CREATE INDEX idx_orders_estado_open
		        ON orders (estado)
		        WHERE estado NOT IN ('COMPLETADO', 'CANCELADO', 'ANULADA');
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// Package sqlite implementa los puertos de persistencia sobre SQLite con gorm. Es el modo de
// un solo nodo (CLI, desarrollo y tests): una única conexión serializa las transacciones, que
// cumple el papel del SELECT FOR UPDATE de PostgreSQL.
package sqlite

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// catalogItemModel fila de catalog_items. Los decimales se guardan como TEXT para no perder precisión.
type catalogItemModel struct {
	ID          string          `gorm:"primaryKey"`
	Code        *string         `gorm:"uniqueIndex"`
	Description string          `gorm:"not null"`
	UnitMeasure string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:text;not null"`
	AverageCost decimal.Decimal `gorm:"type:text;not null"`
	MinQuantity decimal.Decimal `gorm:"type:text;not null"`
	Active      bool            `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (catalogItemModel) TableName() string { return "catalog_items" }

// stockMovementModel fila de stock_movements.
type stockMovementModel struct {
	ID                  string           `gorm:"primaryKey"`
	ItemID              string           `gorm:"not null;index"`
	Kind                string           `gorm:"not null"`
	Quantity            decimal.Decimal  `gorm:"type:text;not null"`
	UnitCost            *decimal.Decimal `gorm:"type:text"`
	PreviousQuantity    decimal.Decimal  `gorm:"type:text;not null"`
	NewQuantity         decimal.Decimal  `gorm:"type:text;not null"`
	PreviousAverageCost decimal.Decimal  `gorm:"type:text;not null"`
	NewAverageCost      decimal.Decimal  `gorm:"type:text;not null"`
	Reason              string
	ActorID             string
	Reference           string
	CreatedAt           time.Time `gorm:"index"`
}

func (stockMovementModel) TableName() string { return "stock_movements" }

// Open abre (o crea) la base en dsn y aplica el esquema.
// dsn puede ser una ruta de archivo o "file:nombre?mode=memory&cache=shared".
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&catalogItemModel{}, &stockMovementModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// Close cierra la conexión subyacente.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

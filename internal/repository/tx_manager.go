package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTxManager runs work in a transaction that holds a row lock on one property.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinPropertyLock locks the property row with SELECT ... FOR UPDATE and calls fn with a
// context carrying the transaction. Work for the same property is serialized until commit.
// fn returning an error rolls everything back.
func (m *GormTxManager) WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error {
	return database.DB(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		var locked PropertyModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", propertyID).
			Take(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Property", propertyID.String())
		}
		if err != nil {
			return fmt.Errorf("failed to lock property: %w", err)
		}

		return fn(database.WithTx(ctx, tx))
	})
}

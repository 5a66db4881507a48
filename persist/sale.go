package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCreateSaleFailed = errors.New("failed to create public sale")

type (
	SaleRepo interface {
		SaveSale(ctx context.Context, state string, rowNumber int, row map[string]string) error
	}
	saleRepository struct {
		db *gorm.DB
	}
)

func (sr *saleRepository) SaveSale(ctx context.Context, state string, rowNumber int, row map[string]string) error {
	sale := &models.PublicSale{
		ID:        uuid.New().String(),
		State:     state,
		RowNumber: rowNumber,
		Data:      row,
	}
	result := sr.db.WithContext(ctx).Create(sale)

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrCreateSaleFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCreateSaleFailed
	}
	return nil
}

func NewSaleRepository(db *gorm.DB) SaleRepo {
	return &saleRepository{db}
}

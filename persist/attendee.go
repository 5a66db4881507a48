package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCreateAttendeeFailed = errors.New("failed to create attendee")

type (
	AttendeeRepo interface {
		InsertAttendee(ctx context.Context, a models.Attendee) error
	}
	attendeeRepository struct {
		db *gorm.DB
	}
)

func (ar *attendeeRepository) InsertAttendee(ctx context.Context, a models.Attendee) error {
	row := &models.AttendeeRow{
		ID:          uuid.New().String(),
		Name:        a.Name,
		PhoneNumber: a.PhoneNumber,
		Event:       a.Event,
	}
	result := ar.db.WithContext(ctx).Create(row)

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrCreateAttendeeFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCreateAttendeeFailed
	}
	return nil
}

func NewAttendeeRepository(db *gorm.DB) AttendeeRepo {
	return &attendeeRepository{db}
}

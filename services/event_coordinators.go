package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilchouksey/campus-events/model"
	"gorm.io/gorm"
)

// upsertCoordinator creates a coordinator or, when the email is already
// known, updates that row in place and moves it to in.EventID.
func upsertCoordinator(tx *gorm.DB, in CoordinatorInput) (*model.EventCoordinator, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var coordinator model.EventCoordinator
	err := tx.Where("email = ?", email).First(&coordinator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		coordinator = model.EventCoordinator{
			Name:           in.Name,
			Email:          email,
			ContNo:         in.ContNo,
			Type:           in.Type,
			Department:     department(in.Department),
			Course:         in.Course,
			BatchStartDate: in.BatchStartDate,
			BatchEndDate:   in.BatchEndDate,
			IsActive:       true,
			EventID:        in.EventID,
		}
		if err := tx.Create(&coordinator).Error; err != nil {
			return nil, err
		}
		return &coordinator, nil
	}
	if err != nil {
		return nil, err
	}

	err = tx.Model(&coordinator).Updates(map[string]interface{}{
		"name":             in.Name,
		"cont_no":          in.ContNo,
		"type":             in.Type,
		"department":       department(in.Department),
		"course":           in.Course,
		"batch_start_date": in.BatchStartDate,
		"batch_end_date":   in.BatchEndDate,
		"is_active":        true,
		"event_id":         in.EventID,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := tx.First(&coordinator, coordinator.ID).Error; err != nil {
		return nil, err
	}
	return &coordinator, nil
}

func department(d model.Department) *model.Department {
	if d == "" {
		return nil
	}
	return &d
}

// CreateCoordinator adds a coordinator to an existing event, updating in place by email
func (s *EventService) CreateCoordinator(ctx context.Context, in CoordinatorInput) (*model.EventCoordinator, error) {
	var coordinator *model.EventCoordinator

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, in.EventID); err != nil {
			return err
		}

		var err error
		coordinator, err = upsertCoordinator(tx, in)
		if err != nil {
			return fmt.Errorf("failed to save coordinator: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return coordinator, nil
}

// GetCoordinator returns a coordinator by id, soft deleted ones included
func (s *EventService) GetCoordinator(ctx context.Context, id uint) (*model.EventCoordinator, error) {
	return findCoordinator(s.db.WithContext(ctx), id)
}

// UpdateCoordinator replaces the fields of an active coordinator
func (s *EventService) UpdateCoordinator(ctx context.Context, id uint, in CoordinatorInput) (*model.EventCoordinator, error) {
	var coordinator *model.EventCoordinator

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findCoordinator(tx.Scopes(model.Active), id)
		if err != nil {
			return err
		}

		if in.EventID == 0 {
			in.EventID = existing.EventID
		} else if err := eventExists(tx, in.EventID); err != nil {
			return err
		}

		err = tx.Model(existing).Updates(map[string]interface{}{
			"name":             in.Name,
			"email":            strings.ToLower(strings.TrimSpace(in.Email)),
			"cont_no":          in.ContNo,
			"type":             in.Type,
			"department":       department(in.Department),
			"course":           in.Course,
			"batch_start_date": in.BatchStartDate,
			"batch_end_date":   in.BatchEndDate,
			"event_id":         in.EventID,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update coordinator: %w", err)
		}

		coordinator, err = findCoordinator(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return coordinator, nil
}

// DeleteCoordinator soft deletes a coordinator
func (s *EventService) DeleteCoordinator(ctx context.Context, id uint) (*model.EventCoordinator, error) {
	coordinator, err := findCoordinator(s.db.WithContext(ctx).Scopes(model.Active), id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(coordinator).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to delete coordinator: %w", err)
	}

	s.invalidate(ctx)
	return coordinator, nil
}

func findCoordinator(db *gorm.DB, id uint) (*model.EventCoordinator, error) {
	var coordinator model.EventCoordinator
	if err := db.First(&coordinator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoordinatorNotFound
		}
		return nil, fmt.Errorf("failed to load coordinator: %w", err)
	}
	return &coordinator, nil
}

func eventExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&model.Event{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

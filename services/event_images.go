package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/services/media"
	"gorm.io/gorm"
)

func addImage(tx *gorm.DB, batch *media.Batch, eventID uint, up media.Upload) (*model.EventImage, error) {
	saved, err := batch.Save(media.KindImage, up)
	if err != nil {
		return nil, err
	}

	image := model.EventImage{
		Name:     saved.Name,
		URL:      saved.Path,
		IsActive: true,
		EventID:  eventID,
	}
	if err := tx.Create(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ListImages returns the active images of an event
func (s *EventService) ListImages(ctx context.Context, eventID uint) ([]model.EventImage, error) {
	images := make([]model.EventImage, 0)
	err := s.db.WithContext(ctx).
		Scopes(model.Active).
		Where("event_id = ?", eventID).
		Order("id").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// GetImage returns one image of an event, soft deleted ones included
func (s *EventService) GetImage(ctx context.Context, eventID, imageID uint) (*model.EventImage, error) {
	return findImage(s.db.WithContext(ctx), eventID, imageID)
}

// AddImages writes and records new images for an event in one transaction
func (s *EventService) AddImages(ctx context.Context, eventID uint, uploads []media.Upload) ([]model.EventImage, error) {
	if len(uploads) == 0 {
		return nil, ErrEmptyImageList
	}

	images := make([]model.EventImage, 0, len(uploads))
	err := s.withUploads(ctx, func(tx *gorm.DB, batch *media.Batch) error {
		if err := eventExists(tx, eventID); err != nil {
			return err
		}

		var errs []error
		for _, up := range uploads {
			image, err := addImage(tx, batch, eventID, up)
			if err != nil {
				errs = append(errs, fmt.Errorf("image %s: %w", up.Name, err))
				continue
			}
			images = append(images, *image)
		}
		return errors.Join(errs...)
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteImages soft deletes every image of an event and returns how many changed
func (s *EventService) DeleteImages(ctx context.Context, eventID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.EventImage{}).
		Scopes(model.Active).
		Where("event_id = ?", eventID).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete images: %w", result.Error)
	}

	s.invalidate(ctx)
	return result.RowsAffected, nil
}

// DeleteImage soft deletes one image of an event
func (s *EventService) DeleteImage(ctx context.Context, eventID, imageID uint) (*model.EventImage, error) {
	image, err := findImage(s.db.WithContext(ctx).Scopes(model.Active), eventID, imageID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(image).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}

	s.invalidate(ctx)
	return image, nil
}

func findImage(db *gorm.DB, eventID, imageID uint) (*model.EventImage, error) {
	var image model.EventImage
	err := db.Where("event_id = ?", eventID).First(&image, imageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return &image, nil
}

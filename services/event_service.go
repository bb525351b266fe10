package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/services/media"
	"github.com/sahilchouksey/campus-events/utils/cache"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"gorm.io/gorm"
)

// Cache tags invalidated by every event mutation
const (
	TagEvents       = "events"
	TagRecentEvents = "events/recents"
)

// RecentMonths is how far back the recent feed reaches
const RecentMonths = 6

// EventService owns events and their dependents
type EventService struct {
	db    *gorm.DB
	store *media.Store
	cache *cache.RedisCache
}

// NewEventService creates a new event service. cache may be nil.
func NewEventService(db *gorm.DB, store *media.Store, cache *cache.RedisCache) *EventService {
	return &EventService{
		db:    db,
		store: store,
		cache: cache,
	}
}

// EventFilter narrows List. Name wins over the date range.
type EventFilter struct {
	Name string
	From *time.Time
	To   *time.Time
}

func (f EventFilter) cacheKey() string {
	stamp := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("events:list:name=%s:from=%s:to=%s", strings.ToLower(f.Name), stamp(f.From), stamp(f.To))
}

// CoordinatorInput is a coordinator as submitted by the panel
type CoordinatorInput struct {
	Name           string                `json:"name" validate:"required"`
	Email          string                `json:"email" validate:"required,email"`
	ContNo         string                `json:"contNo" validate:"required"`
	Type           model.CoordinatorType `json:"type" validate:"required,coordinator_type"`
	Department     model.Department      `json:"department" validate:"omitempty,department"`
	Course         string                `json:"course"`
	BatchStartDate string                `json:"batchStartDate"`
	BatchEndDate   string                `json:"batchEndDate"`
	EventID        uint                  `json:"eventId"`
}

// EventInput is the body of create and update
type EventInput struct {
	Name         string             `json:"name" validate:"required"`
	Organizer    model.Organizer    `json:"organizer" validate:"required,organizer"`
	Description  string             `json:"description" validate:"required"`
	StartDate    time.Time          `json:"startDate" validate:"required"`
	EndDate      time.Time          `json:"endDate" validate:"required"`
	StartTime    time.Time          `json:"startTime" validate:"required"`
	EndTime      time.Time          `json:"endTime" validate:"required"`
	Coordinators []CoordinatorInput `json:"coordinators" validate:"dive"`
	Images       []media.Upload     `json:"images" validate:"dive"`
	CoverImage   *media.Upload      `json:"coverImage"`
	Report       *media.Upload      `json:"report"`
}

// List returns active events matching the filter, newest first
func (s *EventService) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	query := s.db.WithContext(ctx).Scopes(model.Active).Preload("CoverImage")

	switch {
	case strings.TrimSpace(f.Name) != "":
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(f.Name))+"%")
	case f.From != nil || f.To != nil:
		if f.From == nil || f.To == nil {
			return nil, ErrMissingDateRange
		}
		query = query.Where("start_date >= ? AND end_date <= ?", *f.From, *f.To)
	}

	var events []model.Event
	err := s.cache.RememberJSON(ctx, f.cacheKey(), []string{TagEvents}, &events, func() (interface{}, error) {
		var rows []model.Event
		if err := query.Order("start_date DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		return rows, nil
	})
	return events, err
}

// Recent returns active events that started within the last RecentMonths months
func (s *EventService) Recent(ctx context.Context) ([]model.Event, error) {
	now := time.Now()

	var events []model.Event
	err := s.cache.RememberJSON(ctx, "events:recent", []string{TagEvents, TagRecentEvents}, &events, func() (interface{}, error) {
		var rows []model.Event
		err := s.db.WithContext(ctx).
			Scopes(model.Active).
			Preload("CoverImage").
			Where("start_date >= ? AND start_date <= ?", now.AddDate(0, -RecentMonths, 0), now).
			Order("start_date DESC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list recent events: %w", err)
		}
		return rows, nil
	})
	return events, err
}

// Get loads an event by id with its coordinators, images, cover and report.
// Soft deleted rows are returned too, with isActive=false.
func (s *EventService) Get(ctx context.Context, id uint) (*model.Event, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *EventService) get(db *gorm.DB, id uint) (*model.Event, error) {
	var event model.Event
	err := db.
		Preload("Coordinators").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("CoverImage").
		Preload("Report").
		First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

// Create persists an event with every dependent in one transaction.
// Files written for a failed create are removed.
func (s *EventService) Create(ctx context.Context, in EventInput) (*model.Event, error) {
	event := model.Event{IsActive: true}
	applyScalars(&event, in)

	err := s.withUploads(ctx, func(tx *gorm.DB, batch *media.Batch) error {
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		return s.writeDependents(tx, batch, event.ID, in)
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Uint("event_id", event.ID).Str("name", event.Name).Msg("event created")
	return s.Get(ctx, event.ID)
}

// Update replaces the scalar fields of an event, upserts coordinators by
// email, appends images and replaces the cover image and report when given.
func (s *EventService) Update(ctx context.Context, id uint, in EventInput) (*model.Event, error) {
	err := s.withUploads(ctx, func(tx *gorm.DB, batch *media.Batch) error {
		var event model.Event
		if err := tx.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}

		applyScalars(&event, in)
		err := tx.Model(&event).Select("name", "organizer", "description", "start_date", "end_date", "start_time", "end_time").
			Updates(&event).Error
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		return s.writeDependents(tx, batch, event.ID, in)
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Uint("event_id", id).Msg("event updated")
	return s.Get(ctx, id)
}

// Delete soft deletes an event and returns its name
func (s *EventService) Delete(ctx context.Context, id uint) (string, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEventNotFound
		}
		return "", fmt.Errorf("failed to load event: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&event).Update("is_active", false).Error; err != nil {
		return "", fmt.Errorf("failed to delete event: %w", err)
	}

	s.invalidate(ctx)
	logger.Ctx(ctx).Info().Uint("event_id", id).Msg("event deleted")
	return event.Name, nil
}

func applyScalars(event *model.Event, in EventInput) {
	event.Name = strings.TrimSpace(in.Name)
	event.Organizer = in.Organizer
	event.Description = in.Description
	event.StartDate = in.StartDate
	event.EndDate = in.EndDate
	event.StartTime = in.StartTime
	event.EndTime = in.EndTime
}

// withUploads runs fn in a transaction together with a media batch.
// A failed transaction removes the batch's files; a committed one mirrors them.
func (s *EventService) withUploads(ctx context.Context, fn func(tx *gorm.DB, batch *media.Batch) error) error {
	batch := s.store.Begin(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, batch)
	})
	if err != nil {
		batch.Rollback()
		return err
	}

	batch.Commit()
	logger.Ctx(ctx).Debug().Int("files", len(batch.Saved())).Msg("uploads published")
	s.invalidate(ctx)
	return nil
}

// writeDependents writes every dependent of an event and joins their errors
func (s *EventService) writeDependents(tx *gorm.DB, batch *media.Batch, eventID uint, in EventInput) error {
	var errs []error

	// 1. Coordinators
	for _, c := range in.Coordinators {
		c.EventID = eventID
		if _, err := upsertCoordinator(tx, c); err != nil {
			errs = append(errs, fmt.Errorf("coordinator %s: %w", c.Email, err))
		}
	}

	// 2. Images
	for _, up := range in.Images {
		if _, err := addImage(tx, batch, eventID, up); err != nil {
			errs = append(errs, fmt.Errorf("image %s: %w", up.Name, err))
		}
	}

	// 3. Cover image
	if hasUpload(in.CoverImage) {
		if err := putCoverImage(tx, batch, eventID, *in.CoverImage); err != nil {
			errs = append(errs, fmt.Errorf("cover image: %w", err))
		}
	}

	// 4. Report
	if hasUpload(in.Report) {
		if err := putReport(tx, batch, eventID, *in.Report); err != nil {
			errs = append(errs, fmt.Errorf("report: %w", err))
		}
	}

	return errors.Join(errs...)
}

func hasUpload(up *media.Upload) bool {
	return up != nil && up.Name != "" && up.URL != ""
}

func putCoverImage(tx *gorm.DB, batch *media.Batch, eventID uint, up media.Upload) error {
	saved, err := batch.Save(media.KindImage, up)
	if err != nil {
		return err
	}

	var cover model.EventCoverImage
	err = tx.Where("event_id = ?", eventID).First(&cover).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cover = model.EventCoverImage{EventID: eventID, Name: saved.Name, URL: saved.Path}
		return tx.Create(&cover).Error
	case err != nil:
		return err
	}
	return tx.Model(&cover).Updates(map[string]interface{}{"name": saved.Name, "url": saved.Path}).Error
}

func putReport(tx *gorm.DB, batch *media.Batch, eventID uint, up media.Upload) error {
	saved, err := batch.Save(media.KindReport, up)
	if err != nil {
		return err
	}

	var report model.EventReport
	err = tx.Where("event_id = ?", eventID).First(&report).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		report = model.EventReport{EventID: eventID, Name: saved.Name, URL: saved.Path, PageCount: saved.PageCount}
		return tx.Create(&report).Error
	case err != nil:
		return err
	}
	return tx.Model(&report).Updates(map[string]interface{}{
		"name":       saved.Name,
		"url":        saved.Path,
		"page_count": saved.PageCount,
	}).Error
}

// invalidate drops every cached listing. Failures only cost freshness.
func (s *EventService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateTags(ctx, TagEvents, TagRecentEvents); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate event cache")
	}
}

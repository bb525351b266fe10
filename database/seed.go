package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/utils/auth"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, now: time.Now}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	logger.Info().Msg("starting database seeding")

	if err := s.SeedAdminUser(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSampleEvents(); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	logger.Info().Msg("database seeding completed")
	return nil
}

// SeedAdminUser creates the admin account unless one exists.
// Empty credentials skip the step.
func (s *Seeder) SeedAdminUser(email, password string) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info().Msg("admin user already exists, skipping")
		return nil
	}

	if email == "" || password == "" {
		logger.Warn().Msg("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info().Str("email", admin.Email).Msg("created admin user")
	return nil
}

// SeedSampleEvents creates a couple of events on an empty database
func (s *Seeder) SeedSampleEvents() error {
	var count int64
	if err := s.db.Model(&model.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info().Msg("events already exist, skipping")
		return nil
	}

	day := s.now().UTC().Truncate(24 * time.Hour)
	dept := model.DepartmentIT

	events := []model.Event{
		{
			Name:        "Tech Fest",
			Organizer:   model.OrganizerCSClub,
			Description: "Two days of talks, workshops and a hackathon.",
			StartDate:   day.AddDate(0, -1, 0),
			EndDate:     day.AddDate(0, -1, 1),
			StartTime:   day.AddDate(0, -1, 0).Add(9 * time.Hour),
			EndTime:     day.AddDate(0, -1, 1).Add(17 * time.Hour),
			IsActive:    true,
			Coordinators: []model.EventCoordinator{
				{
					Name:       "Event Lead",
					Email:      "techfest.lead@example.edu",
					ContNo:     "9000000000",
					Type:       model.CoordinatorFaculty,
					Department: &dept,
					IsActive:   true,
				},
			},
		},
		{
			Name:        "Finance Summit",
			Organizer:   model.OrganizerFinanceClub,
			Description: "Panel discussions with alumni from the finance industry.",
			StartDate:   day.AddDate(0, 0, 14),
			EndDate:     day.AddDate(0, 0, 14),
			StartTime:   day.AddDate(0, 0, 14).Add(10 * time.Hour),
			EndTime:     day.AddDate(0, 0, 14).Add(13 * time.Hour),
			IsActive:    true,
		},
	}

	if err := s.db.Create(&events).Error; err != nil {
		return err
	}

	logger.Info().Int("count", len(events)).Msg("created sample events")
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

package model

import (
	"time"
)

// Organizer is the club or body running an event
type Organizer string

const (
	OrganizerCSClub        Organizer = "CSCLUB"
	OrganizerFinanceClub   Organizer = "FINANCECLUB"
	OrganizerHRClub        Organizer = "HRCLUB"
	OrganizerMarketingClub Organizer = "MARKETINGCLUB"
	OrganizerSpandhan      Organizer = "SPANDHAN"
	OrganizerOther         Organizer = "OTHER"
)

// Organizers lists every accepted organizer value
var Organizers = []Organizer{
	OrganizerCSClub,
	OrganizerFinanceClub,
	OrganizerHRClub,
	OrganizerMarketingClub,
	OrganizerSpandhan,
	OrganizerOther,
}

// IsValid reports whether o is a known organizer
func (o Organizer) IsValid() bool {
	for _, known := range Organizers {
		if o == known {
			return true
		}
	}
	return false
}

// Event is a campus event together with its dependents
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `gorm:"not null;index" json:"name"`
	Organizer   Organizer `gorm:"type:varchar(20);not null" json:"organizer"`
	Description string    `gorm:"type:text;not null" json:"description"`
	StartDate   time.Time `gorm:"not null;index" json:"startDate"`
	EndDate     time.Time `gorm:"not null;index" json:"endDate"`
	StartTime   time.Time `gorm:"not null" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	IsActive    bool      `gorm:"default:true;index" json:"isActive"`

	// Relationships
	Coordinators []EventCoordinator `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"coordinators,omitempty"`
	Images       []EventImage       `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CoverImage   *EventCoverImage   `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"coverImage,omitempty"`
	Report       *EventReport       `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"report,omitempty"`
}

// CoordinatorType distinguishes faculty from student coordinators
type CoordinatorType string

const (
	CoordinatorFaculty CoordinatorType = "FACULTY"
	CoordinatorStudent CoordinatorType = "STUDENT"
)

// Department is the faculty a coordinator belongs to
type Department string

const (
	DepartmentIT       Department = "IT"
	DepartmentCommerce Department = "COMMERCE"
	DepartmentLaw      Department = "LAW"
)

// EventCoordinator is a faculty or student contact for an event.
// Email is the natural key: resubmitting an email updates the existing row.
type EventCoordinator struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Name           string          `gorm:"not null" json:"name"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	ContNo         string          `gorm:"type:varchar(20);not null" json:"contNo"`
	Type           CoordinatorType `gorm:"type:varchar(10);not null" json:"type"`
	Department     *Department     `gorm:"type:varchar(20)" json:"department,omitempty"`
	Course         string          `gorm:"type:varchar(100)" json:"course,omitempty"`
	BatchStartDate string          `gorm:"type:varchar(20)" json:"batchStartDate,omitempty"`
	BatchEndDate   string          `gorm:"type:varchar(20)" json:"batchEndDate,omitempty"`
	IsActive       bool            `gorm:"default:true;index" json:"isActive"`
	EventID        uint            `gorm:"not null;index" json:"eventId"`
}

// EventImage is one gallery image of an event, stored under the public uploads dir
type EventImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"not null" json:"name"`
	URL       string    `gorm:"not null" json:"url"` // relative to the public dir
	IsActive  bool      `gorm:"default:true;index" json:"isActive"`
	EventID   uint      `gorm:"not null;index" json:"eventId"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// EventCoverImage is the featured image shown in listings
type EventCoverImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name"`
	URL       string    `gorm:"not null" json:"url"`
	EventID   uint      `gorm:"not null;uniqueIndex" json:"eventId"`
}

// EventReport is the post-event report document
type EventReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name"`
	URL       string    `gorm:"not null" json:"url"`
	PageCount int       `gorm:"default:0" json:"pageCount"`
	EventID   uint      `gorm:"not null;uniqueIndex" json:"eventId"`
}

package model

import "time"

type User struct {
	ID           string
	SequentialID int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Enabled      bool
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
	ClientBlocked  ClientStatus = "BLOCKED"
)

type ClientCategory string

const (
	CategoryNew     ClientCategory = "NEW"
	CategoryRegular ClientCategory = "REGULAR"
	CategoryVIP     ClientCategory = "VIP"
	CategoryPremium ClientCategory = "PREMIUM"
)

// Client is the salon profile of a user. At most one per user; the row
// survives when the owning account is disabled.
type Client struct {
	ID            string
	UserID        string
	Phone         string
	Service       ServiceType
	Status        ClientStatus
	Category      ClientCategory
	Notes         string
	LoyaltyPoints int
	TotalSpent    float64
	VisitCount    int
	LastVisit     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryFor derives the client tier from visit history and spend.
func CategoryFor(visitCount int, totalSpent float64) ClientCategory {
	switch {
	case totalSpent >= 1000 && visitCount >= 20:
		return CategoryPremium
	case totalSpent >= 500 && visitCount >= 10:
		return CategoryVIP
	case visitCount >= 3:
		return CategoryRegular
	}
	return CategoryNew
}

type Appointment struct {
	ID              string
	Title           string
	Description     string
	StartTime       time.Time
	DurationMinutes int
	EndTime         time.Time
	Status          AppointmentStatus
	Service         ServiceType
	CreatorID       string
	AttendeeIDs     []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Appointment) HasAttendee(userID string) bool {
	for _, id := range a.AttendeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

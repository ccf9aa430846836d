package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserInformation is the aggregate profile-and-entitlements view the
// backend serves for a single user.
type UserInformation struct {
	ID                    uuid.UUID            `json:"id"`
	ExternalID            string               `json:"externalId"`
	Type                  UserType             `json:"type"`
	Name                  string               `json:"name"`
	Surname               string               `json:"surname"`
	Email                 string               `json:"email"`
	EmailVerifiedAt       *time.Time           `json:"emailVerifiedAt"`
	BirthDate             string               `json:"birthDate,omitempty"`
	LanguageCode          string               `json:"languageCode"`
	ProfileImageURL       string               `json:"profileImageUrl,omitempty"`
	MissedSessionsCount   int                  `json:"missedSessionsCount"`
	OnboardingCompletedAt *time.Time           `json:"onboardingCompletedAt"`
	HowDidYouFindUs       *HowDidYouFindUs     `json:"howDidYouFindUs"`
	PostalCode            string               `json:"postalCode,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             *time.Time           `json:"updatedAt"`
	DeletedAt             *time.Time           `json:"deletedAt"`
	Packs                 []Pack               `json:"packs"`
	Subscription          *Subscription        `json:"subscription"`
	NextReservations      []ReservationSummary `json:"nextReservations"`
	CompletedReservations []ReservationSummary `json:"completedReservations"`
}

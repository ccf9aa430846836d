package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserType is the role of a platform user.
type UserType string

const (
	UserClient  UserType = "client"
	UserTeacher UserType = "teacher"
	UserAdmin   UserType = "admin"
)

// HowDidYouFindUs is the acquisition channel captured during onboarding.
type HowDidYouFindUs string

const (
	FoundViaFriends       HowDidYouFindUs = "friends"
	FoundViaSocialMedia   HowDidYouFindUs = "socialMedia"
	FoundViaAdvertisement HowDidYouFindUs = "advertisement"
	FoundViaOther         HowDidYouFindUs = "other"
)

// HowDidYouFindUsOptions lists acquisition channels in wizard order.
var HowDidYouFindUsOptions = []HowDidYouFindUs{
	FoundViaFriends,
	FoundViaSocialMedia,
	FoundViaAdvertisement,
	FoundViaOther,
}

// Label returns the display name for an acquisition channel.
func (h HowDidYouFindUs) Label() string {
	switch h {
	case FoundViaFriends:
		return "Amics o família"
	case FoundViaSocialMedia:
		return "Xarxes socials"
	case FoundViaAdvertisement:
		return "Publicitat"
	case FoundViaOther:
		return "Altres"
	default:
		return string(h)
	}
}

// User is a registered platform user.
type User struct {
	ID                    uuid.UUID        `json:"id"`
	ExternalID            string           `json:"externalId"`
	Type                  UserType         `json:"type"`
	Name                  string           `json:"name"`
	Surname               string           `json:"surname"`
	Email                 string           `json:"email"`
	EmailVerifiedAt       *time.Time       `json:"emailVerifiedAt"`
	BirthDate             string           `json:"birthDate,omitempty"`
	LanguageCode          string           `json:"languageCode"`
	ProfileImageURL       string           `json:"profileImageUrl,omitempty"`
	MissedSessionsCount   int              `json:"missedSessionsCount"`
	OnboardingCompletedAt *time.Time       `json:"onboardingCompletedAt"`
	PostalCode            string           `json:"postalCode,omitempty"`
	HowDidYouFindUs       *HowDidYouFindUs `json:"howDidYouFindUs"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             *time.Time       `json:"updatedAt"`
	DeletedAt             *time.Time       `json:"deletedAt"`
}

// IsStaff reports whether the user may manage sessions and take
// attendance.
func (u *User) IsStaff() bool {
	return u != nil && (u.Type == UserTeacher || u.Type == UserAdmin)
}

// NeedsOnboarding reports whether the onboarding wizard must run before
// the user can use the app.
func (u *User) NeedsOnboarding() bool {
	return u != nil && u.OnboardingCompletedAt == nil
}

// FullName joins name and surname, tolerating missing parts.
func (u *User) FullName() string {
	switch {
	case u == nil:
		return ""
	case u.Name == "":
		return u.Surname
	case u.Surname == "":
		return u.Name
	default:
		return u.Name + " " + u.Surname
	}
}

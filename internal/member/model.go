package member

import (
	"time"

	"github.com/uptrace/bun"
)

// Enrollment is one membership application. Rows are append-only.
type Enrollment struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	FullName          string    `bun:"full_name,notnull" json:"full_name"`
	DateOfBirth       string    `bun:"date_of_birth" json:"date_of_birth"`
	Gender            string    `bun:"gender" json:"gender"`
	Country           string    `bun:"country" json:"country"`
	Email             string    `bun:"email,notnull" json:"email"`
	Phone             string    `bun:"phone" json:"phone"`
	Occupation        string    `bun:"occupation" json:"occupation"`
	Institution       string    `bun:"institution" json:"institution"`
	Reason            string    `bun:"reason" json:"reason"`
	Goals             string    `bun:"goals" json:"goals"`
	CommunicationPref string    `bun:"communication_pref" json:"communication_pref"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}

// EnrollmentRequest is the body of POST /api/members.
type EnrollmentRequest struct {
	FullName          string `json:"fullName" validate:"notblank"`
	DateOfBirth       string `json:"dateOfBirth"`
	Gender            string `json:"gender"`
	Country           string `json:"country"`
	Email             string `json:"email" validate:"notblank"`
	Phone             string `json:"phone"`
	Occupation        string `json:"occupation"`
	Institution       string `json:"institution"`
	Reason            string `json:"reason"`
	Goals             string `json:"goals"`
	CommunicationPref string `json:"communicationPref"`
}

func (EnrollmentRequest) RequiredMessage() string {
	return "Full name and email are required."
}

func (r EnrollmentRequest) toEnrollment() *Enrollment {
	return &Enrollment{
		FullName:          r.FullName,
		DateOfBirth:       r.DateOfBirth,
		Gender:            r.Gender,
		Country:           r.Country,
		Email:             r.Email,
		Phone:             r.Phone,
		Occupation:        r.Occupation,
		Institution:       r.Institution,
		Reason:            r.Reason,
		Goals:             r.Goals,
		CommunicationPref: r.CommunicationPref,
	}
}

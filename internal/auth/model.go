package auth

import (
	"membership-service/internal/account"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	AdminKey          string `json:"adminKey"`
	MemberID          *int64 `json:"memberId"`
	Email             string `json:"email" validate:"notblank"`
	Password          string `json:"password" validate:"notblank"`
	Role              string `json:"role"`
	CanFinanceHelp    bool   `json:"canFinanceHelp"`
	CanLaptopHelp     bool   `json:"canLaptopHelp"`
	CanMentorshipHelp bool   `json:"canMentorshipHelp"`
	CanVolunteer      bool   `json:"canVolunteer"`
	WhatsappChannel   string `json:"whatsappChannel"`
	TelegramChannel   string `json:"telegramChannel"`
}

func (RegisterRequest) RequiredMessage() string {
	return "Email and password are required."
}

func (r RegisterRequest) toUser(passwordHash string) *account.User {
	user := &account.User{
		Email:             r.Email,
		PasswordHash:      passwordHash,
		Role:              r.Role,
		CanFinanceHelp:    r.CanFinanceHelp,
		CanLaptopHelp:     r.CanLaptopHelp,
		CanMentorshipHelp: r.CanMentorshipHelp,
		CanVolunteer:      r.CanVolunteer,
		WhatsappChannel:   optional(r.WhatsappChannel),
		TelegramChannel:   optional(r.TelegramChannel),
	}
	if r.MemberID != nil && *r.MemberID != 0 {
		user.MemberID = r.MemberID
	}
	if user.Role == "" {
		user.Role = account.DefaultRole
	}
	return user
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

func (LoginRequest) RequiredMessage() string {
	return "Email and password are required."
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

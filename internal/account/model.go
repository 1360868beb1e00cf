package account

import (
	"time"

	"github.com/uptrace/bun"
)

const DefaultRole = "member"

// User is a credentialed member account created by an administrator.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	MemberID          *int64    `bun:"member_id" json:"memberId,omitempty"`
	Email             string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash      string    `bun:"password_hash,notnull" json:"-"` // Never expose the hash
	Role              string    `bun:"role,notnull" json:"role"`
	CanFinanceHelp    bool      `bun:"can_finance_help,notnull" json:"canFinanceHelp"`
	CanLaptopHelp     bool      `bun:"can_laptop_help,notnull" json:"canLaptopHelp"`
	CanMentorshipHelp bool      `bun:"can_mentorship_help,notnull" json:"canMentorshipHelp"`
	CanVolunteer      bool      `bun:"can_volunteer,notnull" json:"canVolunteer"`
	WhatsappChannel   *string   `bun:"whatsapp_channel" json:"whatsappChannel"`
	TelegramChannel   *string   `bun:"telegram_channel" json:"telegramChannel"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Links is the member-facing view of a user's capability flags and channels.
type Links struct {
	FinanceHelp     bool    `json:"financeHelp"`
	LaptopHelp      bool    `json:"laptopHelp"`
	MentorshipHelp  bool    `json:"mentorshipHelp"`
	Volunteer       bool    `json:"volunteer"`
	WhatsappChannel *string `json:"whatsappChannel"`
	TelegramChannel *string `json:"telegramChannel"`
}

func (u *User) Links() Links {
	return Links{
		FinanceHelp:     u.CanFinanceHelp,
		LaptopHelp:      u.CanLaptopHelp,
		MentorshipHelp:  u.CanMentorshipHelp,
		Volunteer:       u.CanVolunteer,
		WhatsappChannel: u.WhatsappChannel,
		TelegramChannel: u.TelegramChannel,
	}
}

package models

import "time"

// UserModel represents an account. Accounts have no password: sign-in is
// OAuth or a one-time email link, and a user row is created on first
// successful sign-in.
type UserModel struct {
	Base
	Email         string        `json:"email"           gorm:"uniqueIndex;not null"`
	Name          string        `json:"name"`
	Avatar        string        `json:"avatar"`
	LastLoginTime *time.Time    `json:"last_login_time"`
	LastLoginIP   string        `json:"last_login_ip"`
	OAuth2        []OAuth2Token `json:"oauth2,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// OAuth2Token holds OAuth2 account info linked to a user.
type OAuth2Token struct {
	Base
	UserID      string     `json:"-"            gorm:"index;not null"`
	Provider    string     `json:"provider"     gorm:"index;not null"`
	ProviderUID string     `json:"provider_uid" gorm:"index"`
	AccessToken string     `json:"-"            gorm:"type:text"`
	LastUsed    *time.Time `json:"last_used"`
}

func (OAuth2Token) TableName() string { return "oauth2_tokens" }

// LoginTicket is a single-use magic-link sign-in ticket. The mailed token is
// stored only as a bcrypt hash.
type LoginTicket struct {
	Base
	Email      string     `json:"email"      gorm:"index;not null"`
	TokenHash  string     `json:"-"          gorm:"not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index;not null"`
	ConsumedAt *time.Time `json:"-"`
}

func (LoginTicket) TableName() string { return "login_tickets" }

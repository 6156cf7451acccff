package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/mail"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	magicLinkTTL = 15 * time.Minute

	// bcrypt input is capped at 72 bytes; 32 random bytes hex-encoded fits.
	magicTokenBytes = 32
)

var (
	ErrTicketInvalid = errors.New("sign-in link is invalid or expired")
	ErrMailDisabled  = errors.New("mail delivery is not configured")
)

// Service handles accounts and magic-link sign-in tickets.
type Service struct {
	db      *gorm.DB
	sender  mail.Sender
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(db *gorm.DB, sender mail.Sender, baseURL string, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the wall clock used for ticket expiry.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// FindOrCreateUser returns the account for the given email, creating it on
// first sign-in.
func (s *Service) FindOrCreateUser(email, name, avatar string) (*models.UserModel, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	var user models.UserModel
	err := s.db.First(&user, "email = ?", email).Error
	if err == nil {
		updates := map[string]interface{}{}
		if name != "" && user.Name == "" {
			updates["name"] = name
		}
		if avatar != "" && user.Avatar == "" {
			updates["avatar"] = avatar
		}
		if len(updates) > 0 {
			_ = s.db.Model(&user).Updates(updates).Error
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.UserModel{
		Email:  email,
		Name:   name,
		Avatar: avatar,
	}
	if user.Name == "" {
		user.Name = strings.SplitN(email, "@", 2)[0]
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordLogin stamps last-login metadata on the account.
func (s *Service) RecordLogin(userID, ip string) {
	now := s.now()
	err := s.db.Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_time": now,
			"last_login_ip":   ip,
		}).Error
	if err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", userID), zap.Error(err))
	}
}

// RequestMagicLink creates a single-use ticket and mails the sign-in link.
// Only a bcrypt hash of the token touches the database.
func (s *Service) RequestMagicLink(email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errors.New("email is required")
	}

	raw := make([]byte, magicTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ticket := models.LoginTicket{
		Email:     email,
		TokenHash: string(hash),
		ExpiresAt: s.now().Add(magicLinkTTL),
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/v1/auth/magic-link/callback?ticket=%s&token=%s",
		s.baseURL, url.QueryEscape(ticket.ID), url.QueryEscape(token))

	return s.sender.Send(mail.Message{
		To:      []string{email},
		Subject: "Your sign-in link",
		HTML: "<p>Click the link below to sign in. It expires in 15 minutes and can be used once.</p>" +
			"<p><a href=\"" + link + "\">" + link + "</a></p>" +
			"<p>If you did not request this, ignore this email.</p>",
	})
}

// ConsumeMagicLink validates and burns a ticket, returning the signed-in
// user. A ticket is single use: consumption is a guarded update so two
// concurrent requests cannot both win.
func (s *Service) ConsumeMagicLink(ticketID, token string) (*models.UserModel, error) {
	ticketID = strings.TrimSpace(ticketID)
	token = strings.TrimSpace(token)
	if ticketID == "" || token == "" {
		return nil, ErrTicketInvalid
	}

	var ticket models.LoginTicket
	if err := s.db.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketInvalid
		}
		return nil, err
	}

	now := s.now()
	if ticket.ConsumedAt != nil || now.After(ticket.ExpiresAt) {
		return nil, ErrTicketInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(ticket.TokenHash), []byte(token)) != nil {
		return nil, ErrTicketInvalid
	}

	res := s.db.Model(&models.LoginTicket{}).
		Where("id = ? AND consumed_at IS NULL", ticket.ID).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTicketInvalid
	}

	return s.FindOrCreateUser(ticket.Email, "", "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

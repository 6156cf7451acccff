package auth

import (
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkthink/core/internal/models"
	"github.com/thinkthink/core/internal/pkg/mail"
	"github.com/thinkthink/core/internal/testutil"
	"gorm.io/gorm"
)

type captureSender struct {
	messages []mail.Message
	err      error
}

func (s *captureSender) Send(msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

var linkPattern = regexp.MustCompile(`href="([^"]+)"`)

// lastLink pulls ticket and token out of the most recent mailed sign-in link.
func lastLink(t *testing.T, sender *captureSender) (ticketID, token string) {
	t.Helper()

	require.NotEmpty(t, sender.messages)
	m := linkPattern.FindStringSubmatch(sender.messages[len(sender.messages)-1].HTML)
	require.Len(t, m, 2)

	u, err := url.Parse(m[1])
	require.NoError(t, err)
	return u.Query().Get("ticket"), u.Query().Get("token")
}

func newTestAuthService(t *testing.T) (*Service, *captureSender, *gorm.DB) {
	t.Helper()

	db := testutil.DB(t)
	sender := &captureSender{}
	svc := NewService(db, sender, "http://localhost:2333", testutil.Logger(t))
	return svc, sender, db
}

func TestFindOrCreateUser(t *testing.T) {
	svc, _, db := newTestAuthService(t)

	user, err := svc.FindOrCreateUser("Reader@Example.com", "Reader", "")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "Reader", user.Name)

	again, err := svc.FindOrCreateUser("reader@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateUserDefaultsName(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	user, err := svc.FindOrCreateUser("anon@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "anon", user.Name)
}

func TestMagicLinkRoundTrip(t *testing.T) {
	svc, sender, db := newTestAuthService(t)

	require.NoError(t, svc.RequestMagicLink("reader@example.com"))
	ticketID, token := lastLink(t, sender)
	require.NotEmpty(t, ticketID)
	require.NotEmpty(t, token)

	// only the hash is stored
	var ticket models.LoginTicket
	require.NoError(t, db.First(&ticket, "id = ?", ticketID).Error)
	assert.NotEqual(t, token, ticket.TokenHash)
	assert.NotContains(t, ticket.TokenHash, token)

	user, err := svc.ConsumeMagicLink(ticketID, token)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestMagicLinkSingleUse(t *testing.T) {
	svc, sender, _ := newTestAuthService(t)

	require.NoError(t, svc.RequestMagicLink("reader@example.com"))
	ticketID, token := lastLink(t, sender)

	_, err := svc.ConsumeMagicLink(ticketID, token)
	require.NoError(t, err)

	_, err = svc.ConsumeMagicLink(ticketID, token)
	require.ErrorIs(t, err, ErrTicketInvalid)
}

func TestMagicLinkExpiry(t *testing.T) {
	svc, sender, _ := newTestAuthService(t)

	base := time.Now()
	svc.SetClock(func() time.Time { return base })
	require.NoError(t, svc.RequestMagicLink("reader@example.com"))
	ticketID, token := lastLink(t, sender)

	svc.SetClock(func() time.Time { return base.Add(16 * time.Minute) })
	_, err := svc.ConsumeMagicLink(ticketID, token)
	require.ErrorIs(t, err, ErrTicketInvalid)
}

func TestMagicLinkWrongToken(t *testing.T) {
	svc, sender, _ := newTestAuthService(t)

	require.NoError(t, svc.RequestMagicLink("reader@example.com"))
	ticketID, _ := lastLink(t, sender)

	_, err := svc.ConsumeMagicLink(ticketID, "deadbeef")
	require.ErrorIs(t, err, ErrTicketInvalid)

	_, err = svc.ConsumeMagicLink("no-such-ticket", "deadbeef")
	require.ErrorIs(t, err, ErrTicketInvalid)
}

func TestMagicLinkMailFailurePropagates(t *testing.T) {
	db := testutil.DB(t)
	sender := &captureSender{err: mail.ErrDisabled}
	svc := NewService(db, sender, "http://localhost:2333", testutil.Logger(t))

	err := svc.RequestMagicLink("reader@example.com")
	require.ErrorIs(t, err, mail.ErrDisabled)
}

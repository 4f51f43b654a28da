package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func TestService_SendWelcome(t *testing.T) {
	mailer := new(MockMailer)
	svc := NewService(mailer, "https://example.test")

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.To == "jane@example.com" &&
			msg.Subject == "Welcome to TCW1!" &&
			assert.Contains(t, msg.HTML, "Hi Jane,") &&
			assert.Contains(t, msg.HTML, "https://example.test/login")
	})).Return(nil).Once()

	svc.SendWelcome(context.Background(), "jane@example.com", "Jane")
	mailer.AssertExpectations(t)
}

func TestService_EscapesUserInput(t *testing.T) {
	mailer := new(MockMailer)
	svc := NewService(mailer, "")

	var sent Message
	mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(Message)
	}).Return(nil)

	svc.SendWelcome(context.Background(), "x@example.com", "<script>alert(1)</script>")
	assert.NotContains(t, sent.HTML, "<script>")
	assert.Contains(t, sent.HTML, "&lt;script&gt;")
}

func TestService_LoginNotification(t *testing.T) {
	mailer := new(MockMailer)
	s := NewService(mailer, "").(*service)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	var sent Message
	mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(Message)
	}).Return(nil)

	s.SendLoginNotification(context.Background(), "a@example.com", "10.0.0.1", "Firefox")
	assert.Equal(t, "New Login on Your TCW1 Account", sent.Subject)
	assert.Contains(t, sent.HTML, "10.0.0.1")
	assert.Contains(t, sent.HTML, "Firefox")
	assert.Contains(t, sent.HTML, "Wed, 01 May 2024 09:00:00 UTC")
}

func TestService_SendFailureIsSwallowed(t *testing.T) {
	mailer := new(MockMailer)
	svc := NewService(mailer, "")
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	assert.NotPanics(t, func() {
		svc.SendPasswordChanged(context.Background(), "a@example.com")
		svc.SendTwoFactorEnabled(context.Background(), "a@example.com")
		svc.SendTwoFactorDisabled(context.Background(), "a@example.com")
	})
	mailer.AssertNumberOfCalls(t, "Send", 3)
}

func TestNewMailer(t *testing.T) {
	_, ok := NewMailer("", "noreply@tcw1.org", "TCW1").(LogMailer)
	assert.True(t, ok)

	sg, ok := NewMailer("SG.key", "noreply@tcw1.org", "TCW1").(*SendGridMailer)
	require.True(t, ok)
	assert.Equal(t, "noreply@tcw1.org", sg.from.Address)

	err := LogMailer{}.Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestStripTags(t *testing.T) {
	html, err := render("password_changed", nil)
	require.NoError(t, err)
	text := stripTags(html)
	assert.NotContains(t, text, "<")
	assert.Contains(t, text, "Password Changed")
	assert.Contains(t, text, "TCW1 Team")
}

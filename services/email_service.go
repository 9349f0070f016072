package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

// EmailService sends transactional email over SMTP. When SMTP credentials are
// not configured the service logs and drops messages instead of failing the
// surrounding request.
type EmailService struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	appURL string
}

// NewEmailService creates a new email service instance from environment variables
func NewEmailService() *EmailService {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	svc := &EmailService{
		host:   os.Getenv("SMTP_HOST"),
		port:   port,
		user:   os.Getenv("SMTP_USER"),
		pass:   os.Getenv("SMTP_PASS"),
		from:   os.Getenv("SMTP_FROM"),
		appURL: os.Getenv("APP_URL"),
	}

	if svc.host == "" || svc.user == "" {
		log.Printf("WARNING: SMTP credentials not fully configured; email delivery disabled")
	}
	if svc.from == "" {
		svc.from = svc.user
	}

	return svc
}

func (s *EmailService) configured() bool {
	return s.host != "" && s.user != ""
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	if !s.configured() {
		log.Printf("Email delivery disabled, dropping message to %s: %s", to, subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendInviteEmail sends the accept link for an admin invite
func (s *EmailService) SendInviteEmail(invite *models.AdminInvite) error {
	acceptURL := fmt.Sprintf("%s/invites/%s/accept", s.appURL, invite.Token)
	body := fmt.Sprintf(
		`<p>You have been invited to join Your Spell Caster as <b>%s</b>.</p>
<p><a href="%s">Accept the invitation</a> before %s.</p>`,
		invite.Role, acceptURL, invite.ExpiresAt.Format("Jan 2, 2006"),
	)
	return s.send(invite.Email, "You're invited to Your Spell Caster", body)
}

// SendQuoteEmail notifies a user that a price quote was created or updated
func (s *EmailService) SendQuoteEmail(to string, quote *models.PriceQuote) error {
	body := fmt.Sprintf(
		`<p>A price quote for <b>%s</b> is ready: $%.2f.</p>
<p>The quote is valid until %s. Sign in to accept or decline it.</p>`,
		quote.ServiceName, quote.QuotedPrice, quote.ValidUntil.Format("Jan 2, 2006"),
	)
	return s.send(to, "Your price quote is ready", body)
}

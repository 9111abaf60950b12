package services

import (
	"fmt"
	"net/smtp"
	"time"

	"huntapi/config"
)

// EmailService notifies the hunt organizers by mail. It is optional; when no
// mail host or recipient is configured, sends are silent no-ops.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	to       string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.MailHost,
		port:     cfg.MailPort,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		to:       cfg.OrganizerEmail,
	}
}

// SendHuntCompletionEmail tells the organizers a team has finished the hunt.
func (s *EmailService) SendHuntCompletionEmail(teamName string, solveTime time.Time) error {
	if s.host == "" || s.to == "" {
		return nil
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: Hunt finished: %s\r\n\r\n"+
			"Team %q solved the final puzzle at %s.\r\n",
		s.to, teamName, teamName, solveTime.Format(time.RFC1123)))

	return smtp.SendMail(s.host+":"+s.port, auth, s.username, []string{s.to}, msg)
}

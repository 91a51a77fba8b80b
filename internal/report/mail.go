package report

import (
	"fmt"
	"kabinet-assist/internal/grades"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// Mailer delivers rendered reports by email.
type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) (Mailer, error) {
	if config.Server == "" || config.EmailAddress == "" {
		return Mailer{}, fmt.Errorf("smtp server and email address must be configured")
	}
	if config.Port == 0 {
		config.Port = 587
	}
	return Mailer{config: config}, nil
}

// NewReportEmail builds the email of a selection's report.
func NewReportEmail(from, to, yearLabel, semesterLabel string, courses []grades.EnrichedCourse) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Kabinet Assist <%s>", from)
	mail.To = []string{to}
	mail.Subject = fmt.Sprintf("Qiymətlər: %s, %s", yearLabel, semesterLabel)
	mail.Text = []byte(RenderString(courses))
	return mail
}

// SendReport emails the report of a selection to `to`.
func (m Mailer) SendReport(to, yearLabel, semesterLabel string, courses []grades.EnrichedCourse) error {
	mail := NewReportEmail(m.config.EmailAddress, to, yearLabel, semesterLabel, courses)

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send report to %s: %w", to, err)
	}
	return nil
}

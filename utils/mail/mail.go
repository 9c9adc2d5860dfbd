package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"strings"

	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/models/reseller_models"
	gomail "gopkg.in/gomail.v2"
)

var commissionReviewTemplate = template.Must(template.New("commission_review").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Name}},</p>
{{if .Approved}}
<p>Your referral commission of <strong>{{.Amount}}</strong> for settlement {{.SettlementID}} has been approved and credited to your wallet.</p>
{{else}}
<p>Your referral commission of <strong>{{.Amount}}</strong> for settlement {{.SettlementID}} was rejected.</p>
<p>Reason: {{.Reason}}</p>
{{end}}
</body>
</html>
`))

type commissionReviewData struct {
	Name         string
	Amount       string
	SettlementID string
	Approved     bool
	Reason       string
}

// Mailer sends referrer notifications over SMTP. A Mailer without a host only logs.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	send   func(m ...*gomail.Message) error
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{from: from}
	if host == "" {
		logger.WarnLogger.Warn("SMTP_HOST not set, commission notifications will only be logged")
		return m
	}
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         host,
	}
	m.dialer = dialer
	m.send = dialer.DialAndSend
	return m
}

// RenderCommissionReview builds the subject and HTML body of a review notice.
func RenderCommissionReview(referrer *reseller_models.Reseller, c *commission_models.Commission) (string, string, error) {
	data := commissionReviewData{
		Name:         referrer.Name,
		Amount:       c.Amount.StringFixed(2),
		SettlementID: c.SettlementID.String(),
		Approved:     c.Status == commission_models.CommissionStatusApproved,
	}
	if c.RejectReason != nil {
		data.Reason = *c.RejectReason
	}
	if data.Name == "" {
		data.Name = "there"
	}

	var body bytes.Buffer
	if err := commissionReviewTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	subject := "Your referral commission was " + string(c.Status)
	return subject, body.String(), nil
}

// CommissionReviewed renders the notice and delivers it in the background.
func (m *Mailer) CommissionReviewed(_ context.Context, referrer *reseller_models.Reseller, c *commission_models.Commission) error {
	to := strings.TrimSpace(referrer.Email)
	if to == "" {
		return fmt.Errorf("referrer %s has no email address", referrer.ID)
	}
	subject, body, err := RenderCommissionReview(referrer, c)
	if err != nil {
		return err
	}
	if m.send == nil {
		logger.InfoLogger.Infof("Commission notice for %s not sent (SMTP disabled): %s", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	go func() {
		logger.InfoLogger.Printf("Attempting to connect to SMTP server: %s:%d", m.dialer.Host, m.dialer.Port)
		if err := m.send(msg); err != nil {
			logger.ErrorLogger.Errorf("Failed to send commission notice to %s: %v", to, err)
			return
		}
		logger.InfoLogger.Infof("Commission notice sent to %s", to)
	}()
	return nil
}

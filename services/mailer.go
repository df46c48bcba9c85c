package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/otomono/jersey-orders-api/config"
	"github.com/wneessen/go-mail"
)

// MailMessage is one outbound relay message
type MailMessage struct {
	SenderName  string
	SenderEmail string // used as Reply-To
	To          string
	Subject     string
	Body        string
}

// Mailer delivers relay messages
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NewMailer picks the transport named by MAIL_TRANSPORT
func NewMailer(ctx context.Context, cfg *config.Config) (Mailer, error) {
	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		return NewSMTPMailer(cfg), nil
	case config.MailTransportRelay:
		return NewRelayClient(cfg.MailRelayURL, nil), nil
	default:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSESMailer(ses.NewFromConfig(awsCfg), cfg.MailSender, cfg.MailSenderName, cfg.MailAdminCC), nil
	}
}

// RenderMailHTML wraps the escaped message in the relay's HTML layout
func RenderMailHTML(msg MailMessage, footer string) string {
	body := strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>\n")
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<h2 style="color: #FF003C;">%s</h2>
<p><strong>From:</strong> %s &lt;%s&gt;</p>
<hr style="border: 1px solid #ddd; margin: 20px 0;">
<div style="background: #f5f5f5; padding: 15px; border-radius: 5px;">
%s
</div>
<hr style="border: 1px solid #ddd; margin: 20px 0;">
<p style="font-size: 12px; color: #666;">%s</p>
</div>
</body>
</html>`,
		html.EscapeString(msg.Subject),
		html.EscapeString(msg.SenderName),
		html.EscapeString(msg.SenderEmail),
		body,
		html.EscapeString(footer))
}

// SESAPI is the subset of the SES client used for sending
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES
type SESMailer struct {
	client     SESAPI
	sender     string
	senderName string
	adminCC    string
}

// NewSESMailer creates an SES transport
func NewSESMailer(client SESAPI, sender, senderName, adminCC string) *SESMailer {
	return &SESMailer{client: client, sender: sender, senderName: senderName, adminCC: adminCC}
}

// Send delivers msg with the sender as Reply-To and the admin copied
func (m *SESMailer) Send(ctx context.Context, msg MailMessage) error {
	if m.sender == "" {
		return fmt.Errorf("sender email address is not configured")
	}

	dest := &types.Destination{ToAddresses: []string{msg.To}}
	if m.adminCC != "" {
		dest.CcAddresses = []string{m.adminCC}
	}

	input := &ses.SendEmailInput{
		Source:           aws.String(fmt.Sprintf("%s <%s>", m.senderName, m.sender)),
		Destination:      dest,
		ReplyToAddresses: []string{msg.SenderEmail},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(RenderMailHTML(msg, "This email was sent from "+m.senderName)),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.Body),
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		log.Printf("[mail] SES send to %s failed: %v", msg.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("[mail] sent %q to %s via SES", msg.Subject, msg.To)
	return nil
}

// SMTPMailer sends through an authenticated SMTP server
type SMTPMailer struct {
	host       string
	options    []mail.Option
	sender     string
	senderName string
	adminCC    string
	send       func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPMailer creates an SMTP transport. Port 465 uses implicit TLS, any
// other port requires STARTTLS.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	sender := cfg.MailSender
	if sender == "" {
		sender = cfg.SMTPUsername
	}
	options := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.SMTPPort == 465 {
		options = append(options, mail.WithSSL())
	}
	m := &SMTPMailer{
		host:       cfg.SMTPHost,
		options:    options,
		sender:     sender,
		senderName: cfg.MailSenderName,
		adminCC:    cfg.MailAdminCC,
	}
	m.send = m.dialAndSend
	return m
}

// Send delivers msg to the recipient with the admin copied
func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := m.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}
	if err := m.send(ctx, out); err != nil {
		log.Printf("[mail] SMTP send to %s failed: %v", msg.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("[mail] sent %q to %s via SMTP", msg.Subject, msg.To)
	return nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.host, m.options...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// buildMessage encodes non-ASCII headers and both bodies; go-mail handles
// the MIME structure and line wrapping
func (m *SMTPMailer) buildMessage(msg MailMessage) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(headerSanitizer.Replace(m.senderName), m.sender); err != nil {
		return nil, err
	}
	if err := out.To(msg.To); err != nil {
		return nil, err
	}
	if m.adminCC != "" {
		if err := out.Cc(m.adminCC); err != nil {
			return nil, err
		}
	}
	if msg.SenderEmail != "" {
		if err := out.ReplyToFormat(headerSanitizer.Replace(msg.SenderName), msg.SenderEmail); err != nil {
			return nil, err
		}
	}
	out.Subject(headerSanitizer.Replace(msg.Subject))
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	out.AddAlternativeString(mail.TypeTextHTML, RenderMailHTML(msg, "This email was sent from "+m.senderName))
	return out, nil
}

var headerSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// MockMailer records messages instead of sending them
type MockMailer struct {
	Sent []MailMessage
	Err  error
}

// Send records msg, or returns Err when set
func (m *MockMailer) Send(ctx context.Context, msg MailMessage) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

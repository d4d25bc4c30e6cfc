// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

// NotificationService is the single narrow door to outbound messaging. The
// workflow decides when and with what data to dispatch; delivery itself is
// the transport's problem. Every attempt, failed or not, leaves a
// NotificationLog row — a failed send never rolls back business state.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type DispatchRequest struct {
	Channel      models.NotificationChannel `json:"channel" validate:"required,oneof=email sms whatsapp"`
	Recipient    string                     `json:"recipient" validate:"required"`
	TemplateName string                     `json:"template_name" validate:"required"`
	TemplateData map[string]interface{}     `json:"template_data,omitempty"`
	SaleID       *uuid.UUID                 `json:"sale_id,omitempty"`
	CompanyID    *uuid.UUID                 `json:"company_id,omitempty"`
}

type emailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Dispatch sends one notification and records the attempt.
func (s *NotificationService) Dispatch(req *DispatchRequest) error {
	var sendErr error

	switch req.Channel {
	case models.ChannelEmail:
		sendErr = s.sendTemplatedEmail(req.Recipient, req.TemplateName, req.TemplateData)
	case models.ChannelSMS, models.ChannelWhatsApp:
		// Text channels are delegated to the messaging provider; here we
		// only hand off and record.
		logrus.WithFields(logrus.Fields{
			"channel":   req.Channel,
			"recipient": req.Recipient,
			"template":  req.TemplateName,
		}).Info("Notification handed to messaging provider")
	default:
		sendErr = fmt.Errorf("unknown channel: %s", req.Channel)
	}

	s.logAttempt(req, sendErr)

	if sendErr != nil {
		return apperrors.Wrap(apperrors.KindUpstream, "notification dispatch failed", sendErr)
	}
	return nil
}

func (s *NotificationService) logAttempt(req *DispatchRequest, sendErr error) {
	entry := &models.NotificationLog{
		SaleID:       req.SaleID,
		CompanyID:    req.CompanyID,
		Channel:      req.Channel,
		Recipient:    req.Recipient,
		TemplateName: req.TemplateName,
		TemplateData: models.JSONB(req.TemplateData),
		Status:       models.NotificationStatusEnviado,
	}
	if sendErr != nil {
		entry.Status = models.NotificationStatusFallido
		entry.ErrorMessage = sendErr.Error()
	}

	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).Error("Failed to persist notification log")
	}
}

func (s *NotificationService) sendTemplatedEmail(to, templateName string, data map[string]interface{}) error {
	tmpl := getEmailTemplate(templateName)

	body, err := renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject, err := renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}

	return s.sendEmail(to, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not configured, skipping send")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func getEmailTemplate(templateName string) emailTemplate {
	templates := map[string]emailTemplate{
		"solicitud_firma": {
			Subject: "Documentos listos para firmar - {{.PlanName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.ClientName}},</h2>
	<p>Sus documentos del plan <strong>{{.PlanName}}</strong> están listos para firmar.</p>
	<p>Ingrese al siguiente enlace para revisarlos y firmarlos digitalmente:</p>
	<a href="{{.SignatureURL}}">Firmar documentos</a>
	<p>El enlace vence el {{.ExpiresAt}}.</p>
	<p>Saludos,<br>Prepaga Digital</p>
</body>
</html>`,
		},
		"recordatorio_firma": {
			Subject: "Recordatorio: su enlace de firma vence pronto",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.ClientName}},</h2>
	<p>Le recordamos que tiene documentos pendientes de firma del plan <strong>{{.PlanName}}</strong>.</p>
	<p>Su enlace vence en aproximadamente <strong>{{.HoursRemaining}} horas</strong>.</p>
	<a href="{{.SignatureURL}}">Firmar ahora</a>
	<p>Saludos,<br>Prepaga Digital</p>
</body>
</html>`,
		},
		"enlace_renovado": {
			Subject: "Nuevo enlace de firma - {{.PlanName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.ClientName}},</h2>
	<p>Su enlace anterior venció. Generamos uno nuevo para que pueda firmar los documentos del plan <strong>{{.PlanName}}</strong>:</p>
	<a href="{{.SignatureURL}}">Firmar documentos</a>
	<p>El nuevo enlace vence el {{.ExpiresAt}}.</p>
	<p>Saludos,<br>Prepaga Digital</p>
</body>
</html>`,
		},
		"solicitud_ddjj": {
			Subject: "Complete su declaración jurada de salud",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.ClientName}},</h2>
	<p>Antes de firmar necesitamos que complete su declaración jurada de salud:</p>
	<a href="{{.QuestionnaireURL}}">Completar declaración</a>
	<p>Saludos,<br>Prepaga Digital</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateName]; exists {
		return tmpl
	}

	// Default template
	return emailTemplate{
		Subject: "Notificación",
		Body:    "<p>{{.Message}}</p>",
	}
}

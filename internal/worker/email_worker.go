package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"vitalexa/internal/infra"
)

// EmailPayload is the job envelope sent to QueueEmail.
type EmailPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path,omitempty"`
}

// EmailWorker sends emails (optionally with a PDF attachment) via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, job Job) error {
	var payload EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		return nil
	}
	return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
}

// NotificationWorker turns business events into concrete emails and re-queues
// them on QueueEmail.
type NotificationWorker struct {
	dispatcher *Dispatcher
}

func NewNotificationWorker(dispatcher *Dispatcher) *NotificationWorker {
	return &NotificationWorker{dispatcher: dispatcher}
}

func (w *NotificationWorker) Process(ctx context.Context, job Job) error {
	switch job.Type {
	case "order_completed":
		var p OrderCompletedPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("notification_worker: invalid payload: %w", err)
		}
		if p.VendorEmail == "" {
			return nil
		}
		return w.dispatcher.EnqueueEmail(ctx, EmailPayload{
			ToEmail: p.VendorEmail,
			Subject: fmt.Sprintf("Factura #%d completada", p.InvoiceNumber),
			Body:    fmt.Sprintf("La orden %s fue completada por un total de %s.", p.OrderID, p.Total),
		})
	case "payroll_ready":
		var p PayrollReadyPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("notification_worker: invalid payload: %w", err)
		}
		if p.VendorEmail == "" {
			return nil
		}
		return w.dispatcher.EnqueueEmail(ctx, EmailPayload{
			ToEmail: p.VendorEmail,
			Subject: fmt.Sprintf("Liquidacion %02d/%d disponible", p.Month, p.Year),
			Body:    "Su liquidacion mensual fue calculada.",
			PDFPath: p.PDFPath,
		})
	}
	return nil
}

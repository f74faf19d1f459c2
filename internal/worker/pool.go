package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotification = "jobs:notification"
	QueueEmail        = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderCompletedPayload announces a completed order to the notification
// worker (email to the assigned vendor, payroll goal watchers, etc.).
type OrderCompletedPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	InvoiceNumber int64     `json:"invoice_number"`
	VendorEmail   string    `json:"vendor_email,omitempty"`
	Total         string    `json:"total"`
}

// PayrollReadyPayload announces a freshly calculated payroll snapshot.
type PayrollReadyPayload struct {
	PayrollID   uuid.UUID `json:"payroll_id"`
	VendorEmail string    `json:"vendor_email,omitempty"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	PDFPath     string    `json:"pdf_path,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueOrderCompleted pushes an order-completed notification job.
func (d *Dispatcher) EnqueueOrderCompleted(ctx context.Context, payload OrderCompletedPayload) error {
	return d.enqueue(ctx, QueueNotification, "order_completed", payload)
}

// EnqueuePayrollReady pushes a payroll-ready notification job.
func (d *Dispatcher) EnqueuePayrollReady(ctx context.Context, payload PayrollReadyPayload) error {
	return d.enqueue(ctx, QueueNotification, "payroll_ready", payload)
}

// EnqueueEmail pushes a raw email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers groups the concrete job processors, wired at the composition root.
type Handlers struct {
	Notification *NotificationWorker
	Email        *EmailWorker
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP so an idle pool costs no CPU.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueNotification, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueNotification:
		if handlers.Notification != nil {
			err = handlers.Notification.Process(ctx, job)
		}
	case QueueEmail:
		if handlers.Email != nil {
			err = handlers.Email.Process(ctx, job)
		}
	}
	if err != nil {
		// Side effects never block business transactions; log and move on.
		log.Error().Str("type", job.Type).Str("queue", queue).Err(err).Msg("job failed")
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}

// Package notify hands outbound email to the worker. Delivery is
// best-effort: callers log failures and carry on.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"flipyard/internal/queue"
)

type PasswordResetEmail struct {
	Email    string `json:"email"`
	ResetURL string `json:"resetUrl"`
}

type InquiryEmail struct {
	SellerEmail  string `json:"sellerEmail"`
	ListingTitle string `json:"listingTitle"`
	ListingURL   string `json:"listingUrl"`
	BuyerName    string `json:"buyerName"`
	BuyerEmail   string `json:"buyerEmail"`
	Message      string `json:"message"`
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetEmail) error
	SendInquiry(ctx context.Context, msg InquiryEmail) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any) (string, error)
}

// QueueNotifier turns notifications into stream tasks for the worker.
type QueueNotifier struct {
	queue Enqueuer
	log   zerolog.Logger
}

func NewQueueNotifier(queue Enqueuer, log zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{queue: queue, log: log}
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, msg PasswordResetEmail) error {
	id, err := n.queue.Enqueue(ctx, queue.TaskPasswordResetEmail, msg)
	if err != nil {
		return err
	}
	n.log.Debug().Str("task_id", id).Msg("password reset email queued")
	return nil
}

func (n *QueueNotifier) SendInquiry(ctx context.Context, msg InquiryEmail) error {
	id, err := n.queue.Enqueue(ctx, queue.TaskInquiryEmail, msg)
	if err != nil {
		return err
	}
	n.log.Debug().Str("task_id", id).Msg("inquiry email queued")
	return nil
}

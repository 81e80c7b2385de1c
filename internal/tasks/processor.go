package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"flipyard/internal/mail"
	"flipyard/internal/models"
	"flipyard/internal/notify"
	"flipyard/internal/queue"
)

const cleanupBatch = 100

type OrphanStore interface {
	ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]models.ListingImage, error)
	Delete(ctx context.Context, id string) error
}

type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

// Processor executes tasks pulled off the stream by queue.Consumer.
type Processor struct {
	mailer    mail.Sender
	images    OrphanStore
	objects   ObjectRemover
	orphanTTL time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewProcessor wires the task handlers. objects may be nil when object
// storage is not configured; cleanup is then skipped.
func NewProcessor(mailer mail.Sender, images OrphanStore, objects ObjectRemover, orphanTTL time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		mailer:    mailer,
		images:    images,
		objects:   objects,
		orphanTTL: orphanTTL,
		now:       time.Now,
		logger:    logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskPasswordResetEmail:
		return p.handlePasswordReset(ctx, task)
	case queue.TaskInquiryEmail:
		return p.handleInquiry(ctx, task)
	case queue.TaskUploadsCleanup:
		return p.handleCleanup(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handlePasswordReset(ctx context.Context, task queue.Task) error {
	var payload notify.PasswordResetEmail
	if err := task.Decode(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	msg, err := mail.PasswordReset(payload.Email, mail.PasswordResetData{ResetURL: payload.ResetURL})
	if err != nil {
		return err
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		return err
	}
	p.logger.Info().Str("task_id", task.ID).Msg("password reset email sent")
	return nil
}

func (p *Processor) handleInquiry(ctx context.Context, task queue.Task) error {
	var payload notify.InquiryEmail
	if err := task.Decode(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	msg, err := mail.Inquiry(payload.SellerEmail, mail.InquiryData{
		ListingTitle: payload.ListingTitle,
		ListingURL:   payload.ListingURL,
		BuyerName:    payload.BuyerName,
		BuyerEmail:   payload.BuyerEmail,
		Message:      payload.Message,
	})
	if err != nil {
		return err
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		return err
	}
	p.logger.Info().Str("task_id", task.ID).Msg("inquiry email relayed")
	return nil
}

// handleCleanup removes uploads that were never attached to a listing.
// The object goes first so a failed delete leaves the row for the next run.
func (p *Processor) handleCleanup(ctx context.Context) error {
	if p.objects == nil {
		p.logger.Debug().Msg("object storage disabled, skipping cleanup")
		return nil
	}

	cutoff := p.now().Add(-p.orphanTTL)
	orphans, err := p.images.ListOrphans(ctx, cutoff, cleanupBatch)
	if err != nil {
		return fmt.Errorf("list orphans: %w", err)
	}

	removed := 0
	for _, img := range orphans {
		if err := p.objects.Remove(ctx, img.ObjectKey); err != nil {
			p.logger.Error().Err(err).Str("image_id", img.ID).Msg("remove orphan object failed")
			continue
		}
		if err := p.images.Delete(ctx, img.ID); err != nil {
			p.logger.Error().Err(err).Str("image_id", img.ID).Msg("delete orphan row failed")
			continue
		}
		removed++
	}

	p.logger.Info().Int("removed", removed).Int("found", len(orphans)).Msg("orphan upload cleanup done")
	return nil
}

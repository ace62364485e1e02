package notify

import (
	"context"
	"log"
	"time"

	"flock-server/internal/chat"
	"flock-server/internal/domain"
	"flock-server/internal/repository"
	"flock-server/internal/service/email"
)

// Deliverer drains the notification queue into the chat channel. It runs
// until the process terminates; individual send failures only delay the
// affected records until the next cycle.
type Deliverer struct {
	notifRepo   repository.NotificationRepository
	transport   chat.Transport
	channel     chat.Channel
	emailSvc    email.Service
	interval    time.Duration
	sendTimeout time.Duration
}

func NewDeliverer(
	notifRepo repository.NotificationRepository,
	transport chat.Transport,
	channel chat.Channel,
	emailSvc email.Service,
	interval time.Duration,
	sendTimeout time.Duration,
) *Deliverer {
	return &Deliverer{
		notifRepo:   notifRepo,
		transport:   transport,
		channel:     channel,
		emailSvc:    emailSvc,
		interval:    interval,
		sendTimeout: sendTimeout,
	}
}

func (d *Deliverer) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DeliverPending(ctx)
		}
	}
}

// DeliverPending runs one delivery cycle: every undelivered record is
// formatted and sent, and marked delivered only after a successful send.
// A crash between send and mark re-delivers the record on restart;
// delivery is at-least-once and duplicates are accepted.
func (d *Deliverer) DeliverPending(ctx context.Context) {
	pending, err := d.notifRepo.ListUndelivered(ctx)
	if err != nil {
		// Distinct from the ordinary empty-queue case: the query itself
		// failed (e.g. a not-yet-indexed field). Skip the cycle rather
		// than crash the loop.
		log.Printf("delivery: queue query failed, treating as empty: %v", err)
		return
	}

	for _, notif := range pending {
		if err := d.deliver(ctx, notif); err != nil {
			log.Printf("delivery: send failed for %s (%s), will retry: %v",
				notif.ID, notif.NotificationID, err)
			continue
		}
		if err := d.notifRepo.MarkDelivered(ctx, notif.ID); err != nil {
			log.Printf("delivery: failed to mark %s delivered: %v", notif.ID, err)
		}
	}
}

func (d *Deliverer) deliver(ctx context.Context, notif domain.PendingNotification) error {
	text := Format(notif)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.transport.Send(sendCtx, d.channel, text); err != nil {
		return err
	}

	if entry, ok := domain.CatalogEntryByID(notif.NotificationID); ok && entry.IsWarning && d.emailSvc != nil {
		if err := d.emailSvc.SendWarningAlert(ctx, entry.Description, text); err != nil {
			log.Printf("delivery: warning email for %s failed: %v", notif.ID, err)
		}
	}
	return nil
}

package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"flock-server/internal/chat"
	"flock-server/internal/domain"
	"flock-server/internal/service/notify"
	"flock-server/tests/mocks"
)

var alertsChannel = chat.Channel{Team: "acme.flock", Topic: "alerts"}

func newDeliverer(notifRepo *mocks.NotificationRepository, transport *mocks.ChatTransport) *notify.Deliverer {
	return notify.NewDeliverer(notifRepo, transport, alertsChannel, nil, time.Minute, time.Second)
}

func TestDeliverer_DeliverPending(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends And Marks Each Record", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		transport := new(mocks.ChatTransport)
		d := newDeliverer(notifRepo, transport)

		first := domain.PendingNotification{ID: uuid.New(), NotificationID: "user_registered"}
		second := domain.PendingNotification{ID: uuid.New(), NotificationID: "server_disabled"}
		notifRepo.On("ListUndelivered", ctx).Return([]domain.PendingNotification{first, second}, nil).Once()
		transport.On("Send", mock.Anything, alertsChannel, mock.Anything).Return(nil).Twice()
		notifRepo.On("MarkDelivered", ctx, first.ID).Return(nil).Once()
		notifRepo.On("MarkDelivered", ctx, second.ID).Return(nil).Once()

		d.DeliverPending(ctx)

		notifRepo.AssertExpectations(t)
		transport.AssertExpectations(t)
	})

	t.Run("Failed Send Leaves Record Queued", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		transport := new(mocks.ChatTransport)
		d := newDeliverer(notifRepo, transport)

		stuck := domain.PendingNotification{ID: uuid.New(), NotificationID: "user_registered"}
		delivered := domain.PendingNotification{ID: uuid.New(), NotificationID: "launchd"}
		notifRepo.On("ListUndelivered", ctx).Return([]domain.PendingNotification{stuck, delivered}, nil).Once()
		transport.On("Send", mock.Anything, alertsChannel, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "registered")
		})).Return(errors.New("keybase unreachable")).Once()
		transport.On("Send", mock.Anything, alertsChannel, mock.Anything).Return(nil).Once()
		notifRepo.On("MarkDelivered", ctx, delivered.ID).Return(nil).Once()

		d.DeliverPending(ctx)

		notifRepo.AssertNotCalled(t, "MarkDelivered", ctx, stuck.ID)
		notifRepo.AssertExpectations(t)
	})

	t.Run("Query Failure Skips The Cycle", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		transport := new(mocks.ChatTransport)
		d := newDeliverer(notifRepo, transport)

		notifRepo.On("ListUndelivered", ctx).Return(nil, errors.New("field not yet indexed")).Once()

		d.DeliverPending(ctx)

		transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeliverer_Run(t *testing.T) {
	notifRepo := new(mocks.NotificationRepository)
	transport := new(mocks.ChatTransport)
	d := notify.NewDeliverer(notifRepo, transport, alertsChannel, nil, 10*time.Millisecond, time.Second)

	notifRepo.On("ListUndelivered", mock.Anything).Return([]domain.PendingNotification{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop after cancellation")
	}
	notifRepo.AssertCalled(t, "ListUndelivered", mock.Anything)
}

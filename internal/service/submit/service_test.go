package submit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flock-server/internal/domain"
	"flock-server/internal/service/submit"
	"flock-server/tests/mocks"
)

func newSubmitService(telemetryRepo *mocks.TelemetryRepository, agentSvc *mocks.AgentService, notifySvc *mocks.NotifyService) submit.Service {
	return submit.NewService(telemetryRepo, agentSvc, notifySvc, nil)
}

func testAgent() *domain.Agent {
	return &domain.Agent{Username: "UUID1", Name: "Jessica Jones", Token: "deadbeef"}
}

func TestSubmitService_Submit(t *testing.T) {
	ctx := context.Background()
	todayIndex := domain.TelemetryIndex(time.Now())

	t.Run("Accepts Batch And Tags Items", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		body := []byte(`[
			{"hostIdentifier": "UUID1", "name": "processes", "unixTime": 1546869425, "action": "added"},
			{"hostIdentifier": "UUID1", "name": "listening_ports", "unixTime": "1546869425"}
		]`)

		telemetryRepo.On("ArchiveBatch", ctx, todayIndex, mock.MatchedBy(func(docs []json.RawMessage) bool {
			if len(docs) != 2 {
				return false
			}
			var doc map[string]any
			if err := json.Unmarshal(docs[0], &doc); err != nil {
				return false
			}
			return doc["@timestamp"] == "2019-01-07T13:57:05.000Z" &&
				doc["flock_username"] == "UUID1" &&
				doc["flock_name"] == "Jessica Jones"
		})).Return(nil).Once()
		agentSvc.On("CheckIn", ctx, "UUID1", (*string)(nil)).Return(nil).Once()

		processed, err := svc.Submit(ctx, testAgent(), body)

		require.NoError(t, err)
		assert.Equal(t, 2, processed)
		telemetryRepo.AssertExpectations(t)
		agentSvc.AssertExpectations(t)
		// Neither table name is in the catalog, so nothing is enqueued.
		notifySvc.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects Whole Batch On One Bad Host", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		body := []byte(`[
			{"hostIdentifier": "UUID1", "name": "processes"},
			{"hostIdentifier": "someone-else", "name": "processes"}
		]`)

		processed, err := svc.Submit(ctx, testAgent(), body)

		var verr *submit.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Item 1 does not contain the correct hostIdentifier", verr.Error())
		assert.Zero(t, processed)
		telemetryRepo.AssertNotCalled(t, "ArchiveBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects Non JSON Body", func(t *testing.T) {
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), new(mocks.NotifyService))

		_, err := svc.Submit(ctx, testAgent(), []byte("not json"))
		assert.EqualError(t, err, "Invalid JSON object")
	})

	t.Run("Rejects Non Array Body", func(t *testing.T) {
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), new(mocks.NotifyService))

		_, err := svc.Submit(ctx, testAgent(), []byte(`{"hostIdentifier": "UUID1"}`))
		assert.EqualError(t, err, "Data is not an array")
	})

	t.Run("Rejects Non Object Item", func(t *testing.T) {
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), new(mocks.NotifyService))

		_, err := svc.Submit(ctx, testAgent(), []byte(`[42]`))
		assert.EqualError(t, err, "Item 0 is not an object")
	})

	t.Run("Lone Catalog Event Enqueues Detail", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		body := []byte(`[
			{"hostIdentifier": "UUID1", "name": "reverse_shell", "unixTime": 1546869425,
			 "action": "added", "columns": {"pid": "4242"}}
		]`)

		telemetryRepo.On("ArchiveBatch", ctx, todayIndex, mock.Anything).Return(nil).Once()
		agentSvc.On("CheckIn", ctx, "UUID1", (*string)(nil)).Return(nil).Once()
		notifySvc.On("Enqueue", ctx, "reverse_shell", mock.MatchedBy(func(details json.RawMessage) bool {
			var event domain.OsqueryEvent
			if err := json.Unmarshal(details, &event); err != nil {
				return false
			}
			return event.ComputerName == "Jessica Jones" &&
				event.Username == "UUID1" &&
				event.Action == "added" &&
				event.Columns["pid"] == "4242"
		})).Return(nil).Once()

		processed, err := svc.Submit(ctx, testAgent(), body)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		notifySvc.AssertExpectations(t)
	})

	t.Run("Grouped Catalog Events Enqueue One Summary", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		body := []byte(`[
			{"hostIdentifier": "UUID1", "name": "launchd", "action": "added"},
			{"hostIdentifier": "UUID1", "name": "launchd", "action": "added"},
			{"hostIdentifier": "UUID1", "name": "launchd", "action": "removed"}
		]`)

		telemetryRepo.On("ArchiveBatch", ctx, todayIndex, mock.Anything).Return(nil).Once()
		agentSvc.On("CheckIn", ctx, "UUID1", (*string)(nil)).Return(nil).Once()
		notifySvc.On("Enqueue", ctx, "launchd", mock.MatchedBy(func(details json.RawMessage) bool {
			var summary domain.OsquerySummary
			if err := json.Unmarshal(details, &summary); err != nil {
				return false
			}
			return summary.Added == 2 && summary.Removed == 1 && summary.Other == 0 && summary.Total == 3
		})).Return(nil).Once()

		processed, err := svc.Submit(ctx, testAgent(), body)

		require.NoError(t, err)
		assert.Equal(t, 3, processed)
		notifySvc.AssertExpectations(t)
	})

	t.Run("Os Version Table Updates Check In", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		body := []byte(`[
			{"hostIdentifier": "UUID1", "name": "pack/flock/os_version",
			 "columns": {"name": "macOS", "version": "10.14.2"}}
		]`)

		telemetryRepo.On("ArchiveBatch", ctx, todayIndex, mock.Anything).Return(nil).Once()
		agentSvc.On("CheckIn", ctx, "UUID1", mock.MatchedBy(func(v *string) bool {
			return v != nil && *v == "macOS 10.14.2"
		})).Return(nil).Once()

		_, err := svc.Submit(ctx, testAgent(), body)

		require.NoError(t, err)
		agentSvc.AssertExpectations(t)
	})

	t.Run("Empty Array Is Accepted", func(t *testing.T) {
		telemetryRepo := new(mocks.TelemetryRepository)
		agentSvc := new(mocks.AgentService)
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(telemetryRepo, agentSvc, notifySvc)

		telemetryRepo.On("ArchiveBatch", ctx, todayIndex, mock.Anything).Return(nil).Once()
		agentSvc.On("CheckIn", ctx, "UUID1", (*string)(nil)).Return(nil).Once()

		processed, err := svc.Submit(ctx, testAgent(), []byte(`[]`))

		require.NoError(t, err)
		assert.Zero(t, processed)
	})
}

func TestSubmitService_SubmitFlockLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("Enqueues Each Event", func(t *testing.T) {
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), notifySvc)

		body := []byte(`[
			{"type": "server_enabled", "timestamp": "2019-01-07T13:57:05.000Z"},
			{"type": "twigs_enabled", "timestamp": "2019-01-07T13:58:00.000Z", "twig_ids": ["processes", "launchd"]}
		]`)

		notifySvc.On("Enqueue", ctx, "server_enabled", mock.MatchedBy(func(details json.RawMessage) bool {
			var m map[string]any
			return json.Unmarshal(details, &m) == nil && m["username"] == "UUID1"
		})).Return(nil).Once()
		notifySvc.On("Enqueue", ctx, "twigs_enabled", mock.Anything).Return(nil).Once()

		processed, err := svc.SubmitFlockLogs(ctx, testAgent(), body)

		require.NoError(t, err)
		assert.Equal(t, 2, processed)
		notifySvc.AssertExpectations(t)
	})

	t.Run("Rejects Unknown Event Type", func(t *testing.T) {
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), notifySvc)

		body := []byte(`[{"type": "mystery_event"}]`)

		_, err := svc.SubmitFlockLogs(ctx, testAgent(), body)

		var verr *submit.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "Item 0")
		notifySvc.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects Before Enqueuing Anything", func(t *testing.T) {
		notifySvc := new(mocks.NotifyService)
		svc := newSubmitService(new(mocks.TelemetryRepository), new(mocks.AgentService), notifySvc)

		body := []byte(`[{"type": "server_enabled", "timestamp": "2019-01-07T13:57:05.000Z"}, "bogus"]`)

		_, err := svc.SubmitFlockLogs(ctx, testAgent(), body)

		assert.EqualError(t, err, "Item 1 is not an object")
		notifySvc.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})
}

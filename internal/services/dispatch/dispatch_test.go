package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) FindUnsent(ctx context.Context) ([]*models.Reminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) MarkReminderSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindPendingWithEmail(ctx context.Context) ([]*models.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entry), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, recipient, subject, body, cc string) error {
	args := m.Called(ctx, recipient, subject, body, cc)
	return args.Error(0)
}

func (m *MockSender) Preflight(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockReportPublisher struct {
	mock.Mock
}

func (m *MockReportPublisher) Publish(report models.DispatchReport) error {
	args := m.Called(report)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func dueReminder(id string) *models.Reminder {
	return &models.Reminder{
		ID:           id,
		ScheduledFor: time.Now().UTC().Add(-time.Hour),
	}
}

func pendingEntry(id, email string) *models.Entry {
	return &models.Entry{
		ID:     id,
		Name:   "Client " + id,
		Email:  email,
		Status: models.StatusPending,
	}
}

func TestService_RunSweep(t *testing.T) {
	tests := []struct {
		name            string
		setupMocks      func(*MockReminderRepository, *MockEntryRepository, *MockSender)
		expectedSummary models.DispatchSummary
		expectedError   bool
	}{
		{
			name: "success - one due reminder, all emails sent",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{
						pendingEntry("e1", "a@example.com"),
						pendingEntry("e2", "b@example.com"),
					}, nil).Once()
				s.On("Preflight", mock.Anything).Return(nil).Once()
				s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil).Times(2)
				rr.On("MarkReminderSent", mock.Anything, "r1").Return(nil).Once()
			},
			expectedSummary: models.DispatchSummary{Processed: 1, Sent: 2},
		},
		{
			name: "reminder marked sent even when every send fails",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{
						pendingEntry("e1", "a@example.com"),
						pendingEntry("e2", "b@example.com"),
					}, nil).Once()
				s.On("Preflight", mock.Anything).Return(nil).Once()
				s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(ErrSendRejected).Times(2)
				rr.On("MarkReminderSent", mock.Anything, "r1").Return(nil).Once()
			},
			expectedSummary: models.DispatchSummary{
				Processed: 1,
				Failed:    2,
				FailedDetails: []models.SendFailure{
					{Recipient: "a@example.com", Error: ErrSendRejected.Error()},
					{Recipient: "b@example.com", Error: ErrSendRejected.Error()},
				},
			},
		},
		{
			name: "partial failure - sent plus failed covers every recipient",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{
						pendingEntry("e1", "ok@example.com"),
						pendingEntry("e2", "slow@example.com"),
					}, nil).Once()
				s.On("Preflight", mock.Anything).Return(nil).Once()
				s.On("Send", mock.Anything, "ok@example.com", mock.Anything, mock.Anything, mock.Anything).
					Return(nil).Once()
				s.On("Send", mock.Anything, "slow@example.com", mock.Anything, mock.Anything, mock.Anything).
					Return(ErrSendTimeout).Once()
				rr.On("MarkReminderSent", mock.Anything, "r1").Return(nil).Once()
			},
			expectedSummary: models.DispatchSummary{
				Processed: 1,
				Sent:      1,
				Failed:    1,
				FailedDetails: []models.SendFailure{
					{Recipient: "slow@example.com", Error: ErrSendTimeout.Error()},
				},
			},
		},
		{
			name: "no due reminders - nothing happens",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{
						{ID: "r1", ScheduledFor: time.Now().UTC().Add(time.Hour)},
					}, nil).Once()
			},
			expectedSummary: models.DispatchSummary{},
		},
		{
			name: "no eligible recipients - reminder stays unsent",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{}, nil).Once()
			},
			expectedSummary: models.DispatchSummary{},
		},
		{
			name: "preflight failure aborts the sweep before any send",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{pendingEntry("e1", "a@example.com")}, nil).Once()
				s.On("Preflight", mock.Anything).Return(ErrTransportUnavailable).Once()
			},
			expectedSummary: models.DispatchSummary{},
			expectedError:   true,
		},
		{
			name: "reminder storage error is returned",
			setupMocks: func(rr *MockReminderRepository, er *MockEntryRepository, s *MockSender) {
				rr.On("FindUnsent", mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			expectedSummary: models.DispatchSummary{},
			expectedError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reminderRepo := new(MockReminderRepository)
			entryRepo := new(MockEntryRepository)
			sender := new(MockSender)
			tt.setupMocks(reminderRepo, entryRepo, sender)

			service := New(reminderRepo, entryRepo, sender, nil, "", 0, newNoopLogger())
			summary, err := service.RunSweep(context.Background())

			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedSummary.Processed, summary.Processed)
			assert.Equal(t, tt.expectedSummary.Sent, summary.Sent)
			assert.Equal(t, tt.expectedSummary.Failed, summary.Failed)
			assert.ElementsMatch(t, tt.expectedSummary.FailedDetails, summary.FailedDetails)

			reminderRepo.AssertExpectations(t)
			entryRepo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestService_RunSweep_NoRecipientsLeavesReminderUnsent(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)

	reminderRepo.On("FindUnsent", mock.Anything).
		Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
	entryRepo.On("FindPendingWithEmail", mock.Anything).
		Return([]*models.Entry{}, nil).Once()

	service := New(reminderRepo, entryRepo, sender, nil, "", 0, newNoopLogger())
	summary, err := service.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.DispatchSummary{}, summary)
	reminderRepo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RunSweep_MarkSentFailureDoesNotAbortPass(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)

	reminderRepo.On("FindUnsent", mock.Anything).
		Return([]*models.Reminder{dueReminder("r1"), dueReminder("r2")}, nil).Once()
	entryRepo.On("FindPendingWithEmail", mock.Anything).
		Return([]*models.Entry{pendingEntry("e1", "a@example.com")}, nil).Once()
	sender.On("Preflight", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, "a@example.com", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Times(2)
	reminderRepo.On("MarkReminderSent", mock.Anything, "r1").
		Return(errors.New("db write failed")).Once()
	reminderRepo.On("MarkReminderSent", mock.Anything, "r2").Return(nil).Once()

	service := New(reminderRepo, entryRepo, sender, nil, "", 0, newNoopLogger())
	summary, err := service.RunSweep(context.Background())

	// Письма уже ушли: неудачная пометка логируется, но проход продолжается,
	// второе напоминание обрабатывается, а первое все равно входит в сводку.
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	reminderRepo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestService_RunSweep_ExpiresStaleReminders(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)

	stale := &models.Reminder{
		ID:           "r-stale",
		ScheduledFor: time.Now().UTC().Add(-72 * time.Hour),
	}
	fresh := dueReminder("r-fresh")

	reminderRepo.On("FindUnsent", mock.Anything).
		Return([]*models.Reminder{stale, fresh}, nil).Once()
	entryRepo.On("FindPendingWithEmail", mock.Anything).
		Return([]*models.Entry{}, nil).Once()
	reminderRepo.On("MarkReminderSent", mock.Anything, "r-stale").Return(nil).Once()

	service := New(reminderRepo, entryRepo, sender, nil, "", 24*time.Hour, newNoopLogger())
	_, err := service.RunSweep(context.Background())

	require.NoError(t, err)
	reminderRepo.AssertExpectations(t)
	reminderRepo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, "r-fresh")
}

func TestService_RunSweep_ConcurrentCallsRunExactlyOne(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)

	started := make(chan struct{})
	release := make(chan struct{})

	reminderRepo.On("FindUnsent", mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]*models.Reminder{}, nil).Once()

	service := New(reminderRepo, entryRepo, sender, nil, "", 0, newNoopLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = service.RunSweep(context.Background())
	}()

	<-started
	_, secondErr := service.RunSweep(context.Background())
	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	require.ErrorIs(t, secondErr, ErrSweepBusy)
	reminderRepo.AssertNumberOfCalls(t, "FindUnsent", 1)
}

func TestService_RunSweep_PublishesReport(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)
	publisher := new(MockReportPublisher)

	reminderRepo.On("FindUnsent", mock.Anything).
		Return([]*models.Reminder{dueReminder("r1")}, nil).Once()
	entryRepo.On("FindPendingWithEmail", mock.Anything).
		Return([]*models.Entry{pendingEntry("e1", "a@example.com")}, nil).Once()
	sender.On("Preflight", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	reminderRepo.On("MarkReminderSent", mock.Anything, "r1").Return(nil).Once()
	publisher.On("Publish", mock.MatchedBy(func(report models.DispatchReport) bool {
		return report.Mode == models.DispatchModeSweep &&
			report.Summary.Processed == 1 && report.Summary.Sent == 1
	})).Return(nil).Once()

	service := New(reminderRepo, entryRepo, sender, publisher, "", 0, newNoopLogger())
	_, err := service.RunSweep(context.Background())

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestService_SendNow(t *testing.T) {
	tests := []struct {
		name            string
		setupMocks      func(*MockEntryRepository, *MockSender)
		expectedSummary models.DispatchSummary
		expectedError   bool
	}{
		{
			name: "success - blast to every pending entry",
			setupMocks: func(er *MockEntryRepository, s *MockSender) {
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{
						pendingEntry("e1", "a@example.com"),
						pendingEntry("e2", "b@example.com"),
						pendingEntry("e3", "c@example.com"),
					}, nil).Once()
				s.On("Preflight", mock.Anything).Return(nil).Once()
				s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil).Times(3)
			},
			expectedSummary: models.DispatchSummary{Sent: 3},
		},
		{
			name: "no pending entries - zero summary without preflight",
			setupMocks: func(er *MockEntryRepository, s *MockSender) {
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{}, nil).Once()
			},
			expectedSummary: models.DispatchSummary{},
		},
		{
			name: "failures are isolated per recipient",
			setupMocks: func(er *MockEntryRepository, s *MockSender) {
				er.On("FindPendingWithEmail", mock.Anything).
					Return([]*models.Entry{
						pendingEntry("e1", "ok@example.com"),
						pendingEntry("e2", "bad@example.com"),
					}, nil).Once()
				s.On("Preflight", mock.Anything).Return(nil).Once()
				s.On("Send", mock.Anything, "ok@example.com", mock.Anything, mock.Anything, mock.Anything).
					Return(nil).Once()
				s.On("Send", mock.Anything, "bad@example.com", mock.Anything, mock.Anything, mock.Anything).
					Return(ErrSendRejected).Once()
			},
			expectedSummary: models.DispatchSummary{
				Sent:   1,
				Failed: 1,
				FailedDetails: []models.SendFailure{
					{Recipient: "bad@example.com", Error: ErrSendRejected.Error()},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reminderRepo := new(MockReminderRepository)
			entryRepo := new(MockEntryRepository)
			sender := new(MockSender)
			tt.setupMocks(entryRepo, sender)

			service := New(reminderRepo, entryRepo, sender, nil, "", 0, newNoopLogger())
			summary, err := service.SendNow(context.Background())

			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedSummary.Sent, summary.Sent)
			assert.Equal(t, tt.expectedSummary.Failed, summary.Failed)
			assert.ElementsMatch(t, tt.expectedSummary.FailedDetails, summary.FailedDetails)

			// Разовая рассылка не трогает хранилище напоминаний.
			reminderRepo.AssertNotCalled(t, "FindUnsent", mock.Anything)
			reminderRepo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, mock.Anything)
			entryRepo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestService_SendNow_UsesOversightCC(t *testing.T) {
	reminderRepo := new(MockReminderRepository)
	entryRepo := new(MockEntryRepository)
	sender := new(MockSender)

	entryRepo.On("FindPendingWithEmail", mock.Anything).
		Return([]*models.Entry{pendingEntry("e1", "a@example.com")}, nil).Once()
	sender.On("Preflight", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, "a@example.com", mailSubject, mock.Anything, "oversight@example.com").
		Return(nil).Once()

	service := New(reminderRepo, entryRepo, sender, nil, "oversight@example.com", 0, newNoopLogger())
	_, err := service.SendNow(context.Background())

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

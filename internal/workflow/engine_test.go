package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nexus-hr/interview-coordinator/internal/cache"
	"github.com/nexus-hr/interview-coordinator/internal/graph"
	"github.com/nexus-hr/interview-coordinator/internal/notify"
	"github.com/nexus-hr/interview-coordinator/internal/scheduling"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]model.InterviewRecord
	history map[uuid.UUID][]model.StageHistoryEntry
	creates int
	updates int
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[uuid.UUID]model.InterviewRecord),
		history: make(map[uuid.UUID][]model.StageHistoryEntry),
	}
}

func (s *memStore) CreateInterview(ctx context.Context, rec *model.InterviewRecord, history []model.StageHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.records[rec.ID] = *rec
	s.history[rec.ID] = append([]model.StageHistoryEntry(nil), history...)
	return nil
}

func (s *memStore) GetInterview(ctx context.Context, id uuid.UUID) (*model.InterviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, &model.NotFoundError{ID: id}
	}
	cp := rec
	return &cp, nil
}

func (s *memStore) ListInterviews(ctx context.Context, query model.ListInterviewQuery) ([]model.InterviewRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.InterviewRecord
	for _, rec := range s.records {
		if query.Status != nil && rec.Status != *query.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (s *memStore) UpdateInterview(ctx context.Context, rec *model.InterviewRecord, entry model.StageHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[rec.ID]
	if !ok {
		return &model.NotFoundError{ID: rec.ID}
	}
	if cur.Version != rec.Version {
		return &model.ConflictError{ID: rec.ID}
	}
	s.updates++
	cp := *rec
	cp.Version++
	s.records[rec.ID] = cp
	entry.InterviewID = rec.ID
	s.history[rec.ID] = append(s.history[rec.ID], entry)
	return nil
}

func (s *memStore) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return &model.NotFoundError{ID: id}
	}
	delete(s.records, id)
	delete(s.history, id)
	return nil
}

func (s *memStore) ListHistory(ctx context.Context, id uuid.UUID) ([]model.StageHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StageHistoryEntry(nil), s.history[id]...), nil
}

// stored returns the committed copy of a record, bypassing the engine.
func (s *memStore) stored(t *testing.T, id uuid.UUID) model.InterviewRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	require.True(t, ok, "record %s not in store", id)
	return rec
}

type fakeNotifier struct {
	connected bool

	failAvailability error
	failConfirmation error
	failReschedule   error
	failCancellation error

	availabilities int
	confirmations  int
	reschedules    int
	cancellations  int

	lastICS    []byte
	lastResume *model.Attachment
	lastOld    time.Time
}

func (n *fakeNotifier) CheckConnected(ctx context.Context) error {
	if !n.connected {
		return model.ErrNotConnected
	}
	return nil
}

func (n *fakeNotifier) SendAvailabilityRequest(ctx context.Context, rec *model.InterviewRecord, custom notify.Custom, cc, bcc string) error {
	if n.failAvailability != nil {
		return &model.DeliveryError{Err: n.failAvailability}
	}
	n.availabilities++
	return nil
}

func (n *fakeNotifier) SendScheduleConfirmation(ctx context.Context, rec *model.InterviewRecord, ics []byte, resume *model.Attachment, custom notify.Custom, cc, bcc string) error {
	if n.failConfirmation != nil {
		return &model.DeliveryError{Err: n.failConfirmation}
	}
	n.confirmations++
	n.lastICS = ics
	n.lastResume = resume
	return nil
}

func (n *fakeNotifier) SendRescheduleNotice(ctx context.Context, rec *model.InterviewRecord, oldTime time.Time, ics []byte, cc, bcc string) error {
	if n.failReschedule != nil {
		return &model.DeliveryError{Err: n.failReschedule}
	}
	n.reschedules++
	n.lastICS = ics
	n.lastOld = oldTime
	return nil
}

func (n *fakeNotifier) SendCancellationNotice(ctx context.Context, rec *model.InterviewRecord) error {
	if n.failCancellation != nil {
		return &model.DeliveryError{Err: n.failCancellation}
	}
	n.cancellations++
	return nil
}

type fakeProvisioner struct {
	creates    int
	cancels    []string
	failCreate error
	failCancel error
}

func (p *fakeProvisioner) CreateMeeting(ctx context.Context, req graph.MeetingRequest) (graph.Meeting, error) {
	if p.failCreate != nil {
		return graph.Meeting{}, p.failCreate
	}
	p.creates++
	return graph.Meeting{
		JoinURL: fmt.Sprintf("https://meet.example/%d", p.creates),
		Ref:     fmt.Sprintf("meeting-%d", p.creates),
	}, nil
}

func (p *fakeProvisioner) CancelMeeting(ctx context.Context, ref string) error {
	if p.failCancel != nil {
		return p.failCancel
	}
	p.cancels = append(p.cancels, ref)
	return nil
}

func newTestEngine() (*Engine, *memStore, *fakeNotifier, *fakeProvisioner) {
	store := newMemStore()
	prov := &fakeProvisioner{}
	coord := &scheduling.Coordinator{
		Provisioner:    prov,
		Cache:          cache.NewMemoryStore(),
		Logger:         zap.NewNop(),
		IdempotencyTTL: time.Hour,
	}
	notifier := &fakeNotifier{connected: true}
	eng := &Engine{
		Store:     store,
		Scheduler: coord,
		Notifier:  notifier,
		Logger:    zap.NewNop(),
	}
	return eng, store, notifier, prov
}

func seedInterview(t *testing.T, store *memStore, status model.Status) *model.InterviewRecord {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	rec := &model.InterviewRecord{
		ID:             uuid.New(),
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		Position:       "Backend Engineer",
		Status:         status,
		Duration:       model.DefaultDuration,
		Platform:       model.DefaultPlatform,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == model.StatusScheduled || status == model.StatusCompleted {
		scheduled := now.Add(48 * time.Hour)
		rec.ScheduledTime = &scheduled
		link := "https://meet.example/0"
		ref := "meeting-0"
		rec.MeetingLink = &link
		rec.MeetingRef = &ref
		it := model.InterviewTypeTechnical
		rec.InterviewType = &it
	}
	require.NoError(t, store.CreateInterview(context.Background(), rec, []model.StageHistoryEntry{
		{Stage: status, Timestamp: now},
	}))
	return rec
}

func TestRequestAvailability(t *testing.T) {
	eng, store, notifier, _ := newTestEngine()

	rec, err := eng.RequestAvailability(context.Background(), model.RequestAvailabilityReq{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		Position:       "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusAwaitingResponse, rec.Status)
	assert.Equal(t, model.DefaultDuration, rec.Duration)
	assert.Equal(t, model.DefaultPlatform, rec.Platform)
	assert.EqualValues(t, 1, rec.Version)
	assert.Equal(t, 1, notifier.availabilities)

	history, err := eng.Store.ListHistory(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusInitialEmail, history[0].Stage)
	assert.Equal(t, model.StatusAwaitingResponse, history[1].Stage)
	assert.Equal(t, history[0].Timestamp, history[1].Timestamp)
	assert.Equal(t, 1, store.creates)
}

func TestRequestAvailabilityValidation(t *testing.T) {
	eng, store, notifier, _ := newTestEngine()

	cases := []model.RequestAvailabilityReq{
		{CandidateEmail: "jane@example.com", Position: "Backend Engineer"},
		{CandidateName: "Jane Doe", Position: "Backend Engineer"},
		{CandidateName: "Jane Doe", CandidateEmail: "jane@example.com"},
		{CandidateName: "   ", CandidateEmail: "jane@example.com", Position: "Backend Engineer"},
	}
	for _, req := range cases {
		_, err := eng.RequestAvailability(context.Background(), req)
		var vErr *model.ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	assert.Equal(t, 0, notifier.availabilities)
	assert.Equal(t, 0, store.creates)
}

func TestRequestAvailabilityNotConnected(t *testing.T) {
	eng, store, notifier, _ := newTestEngine()
	notifier.connected = false

	_, err := eng.RequestAvailability(context.Background(), model.RequestAvailabilityReq{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		Position:       "Backend Engineer",
	})
	require.ErrorIs(t, err, model.ErrNotConnected)
	assert.Equal(t, 0, store.creates)
}

func TestRequestAvailabilitySendFailureLeavesNothingBehind(t *testing.T) {
	eng, store, notifier, _ := newTestEngine()
	notifier.failAvailability = errors.New("smtp down")

	_, err := eng.RequestAvailability(context.Background(), model.RequestAvailabilityReq{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		Position:       "Backend Engineer",
	})
	var dErr *model.DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, 0, store.creates)
}

func TestSchedule(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	when := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	rec, err := eng.Schedule(context.Background(), seeded.ID, model.ScheduleInterviewReq{
		ScheduledTime: when.Format(time.RFC3339),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.StatusScheduled, rec.Status)
	require.NotNil(t, rec.InterviewType)
	assert.Equal(t, model.InterviewTypeTechnical, *rec.InterviewType)
	require.NotNil(t, rec.ScheduledTime)
	assert.True(t, rec.ScheduledTime.Equal(when))
	assert.Equal(t, model.DefaultDuration, rec.Duration)
	assert.Equal(t, model.DefaultPlatform, rec.Platform)
	require.NotNil(t, rec.MeetingLink)
	assert.Equal(t, "https://meet.example/1", *rec.MeetingLink)
	assert.EqualValues(t, 2, rec.Version)

	assert.Equal(t, 1, prov.creates)
	assert.Equal(t, 1, notifier.confirmations)
	assert.Contains(t, string(notifier.lastICS), "BEGIN:VCALENDAR")

	history, err := eng.Store.ListHistory(context.Background(), seeded.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, model.StatusScheduled, last.Stage)
	require.NotNil(t, last.Details)
	assert.Equal(t, "Interview scheduled via virtual-meeting", *last.Details)
}

func TestScheduleWrongStatus(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()

	for _, status := range []model.Status{model.StatusScheduled, model.StatusCompleted, model.StatusCancelled} {
		seeded := seedInterview(t, store, status)
		_, err := eng.Schedule(context.Background(), seeded.ID, model.ScheduleInterviewReq{
			ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		}, nil)
		var tErr *model.InvalidTransitionError
		require.ErrorAs(t, err, &tErr, "status %s", status)
		assert.Equal(t, status, tErr.Current)
	}
	assert.Equal(t, 0, prov.creates)
	assert.Equal(t, 0, notifier.confirmations)
}

func TestScheduleUnknownInterviewType(t *testing.T) {
	eng, store, _, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	_, err := eng.Schedule(context.Background(), seeded.ID, model.ScheduleInterviewReq{
		InterviewType: "astrology",
		ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	}, nil)
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "interview_type", vErr.Field)
	assert.Equal(t, 0, prov.creates)
}

func TestScheduleProvisioningFailure(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)
	prov.failCreate = errors.New("graph 500")

	_, err := eng.Schedule(context.Background(), seeded.ID, model.ScheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	}, nil)
	var pErr *model.ProvisioningError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 0, notifier.confirmations)

	after := store.stored(t, seeded.ID)
	assert.Equal(t, model.StatusAwaitingResponse, after.Status)
	assert.Nil(t, after.MeetingLink)
}

// A retry after a failed confirmation email must reuse the meeting that
// was already provisioned: one meeting, one delivered email, one commit.
func TestScheduleRetryReusesProvisionedMeeting(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	req := model.ScheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second).Format(time.RFC3339),
	}

	notifier.failConfirmation = errors.New("mailbox flake")
	_, err := eng.Schedule(context.Background(), seeded.ID, req, nil)
	var dErr *model.DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, model.StatusAwaitingResponse, store.stored(t, seeded.ID).Status)

	notifier.failConfirmation = nil
	rec, err := eng.Schedule(context.Background(), seeded.ID, req, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, prov.creates)
	assert.Equal(t, 1, notifier.confirmations)
	assert.Equal(t, 1, store.updates)
	assert.Equal(t, model.StatusScheduled, rec.Status)
}

func TestReschedule(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)
	oldTime := *seeded.ScheduledTime

	when := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	reason := "candidate asked to move"
	rec, err := eng.Reschedule(context.Background(), seeded.ID, model.RescheduleInterviewReq{
		ScheduledTime: when.Format(time.RFC3339),
		Reason:        &reason,
	})
	require.NoError(t, err)

	require.NotNil(t, rec.ScheduledTime)
	assert.True(t, rec.ScheduledTime.Equal(when))
	assert.Equal(t, seeded.Duration, rec.Duration, "duration falls back to the existing one")
	require.NotNil(t, rec.MeetingRef)
	assert.Equal(t, "meeting-1", *rec.MeetingRef)
	assert.EqualValues(t, 2, rec.Version)

	assert.Equal(t, []string{"meeting-0"}, prov.cancels, "previous reservation dropped")
	assert.Equal(t, 1, notifier.reschedules)
	assert.True(t, notifier.lastOld.Equal(oldTime))

	history, err := eng.Store.ListHistory(context.Background(), seeded.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	require.NotNil(t, last.Details)
	assert.Contains(t, *last.Details, "Rescheduled from "+oldTime.Format(time.RFC3339))
	assert.Contains(t, *last.Details, "reason: candidate asked to move")
}

func TestRescheduleSurvivesOldMeetingCancelFailure(t *testing.T) {
	eng, store, _, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)
	prov.failCancel = errors.New("meeting already gone")

	rec, err := eng.Reschedule(context.Background(), seeded.ID, model.RescheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, rec.Status)
}

func TestRescheduleWrongStatus(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	_, err := eng.Reschedule(context.Background(), seeded.ID, model.RescheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	var tErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &tErr)
}

func TestUpdateStatusCompleteThenOutcome(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)

	rec, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status: model.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	assert.Nil(t, rec.Outcome)

	outcome := model.OutcomeSelected
	rec, err = eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status:  model.StatusCompleted,
		Outcome: &outcome,
	})
	require.NoError(t, err)
	require.NotNil(t, rec.Outcome)
	assert.Equal(t, model.OutcomeSelected, *rec.Outcome)

	// outcome is write-once
	other := model.OutcomeRejected
	_, err = eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status:  model.StatusCompleted,
		Outcome: &other,
	})
	var tErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &tErr)
}

func TestUpdateStatusOutcomeRejectedWhileCompleting(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)

	outcome := model.OutcomeSelected
	_, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status:  model.StatusCompleted,
		Outcome: &outcome,
	})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "outcome", vErr.Field)
}

func TestUpdateStatusInvalidTargets(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)

	for _, status := range []model.Status{model.StatusAwaitingResponse, model.StatusInitialEmail, model.StatusRejected, "bogus"} {
		_, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{Status: status})
		var tErr *model.InvalidTransitionError
		require.ErrorAs(t, err, &tErr, "status %s", status)
	}
}

func TestUpdateStatusBadOutcomeValue(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusCompleted)

	bad := model.Outcome("maybe")
	_, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status:  model.StatusCompleted,
		Outcome: &bad,
	})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCancelIsBestEffortAboutSideEffects(t *testing.T) {
	eng, store, notifier, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)
	prov.failCancel = errors.New("graph timeout")
	notifier.failCancellation = errors.New("mailbox down")

	rec, err := eng.Cancel(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, rec.Status)
	assert.Nil(t, rec.MeetingLink)
	assert.Nil(t, rec.MeetingRef)

	after := store.stored(t, seeded.ID)
	assert.Equal(t, model.StatusCancelled, after.Status)
}

func TestCancelTerminalStates(t *testing.T) {
	eng, store, _, _ := newTestEngine()

	cancelled := seedInterview(t, store, model.StatusCancelled)
	_, err := eng.Cancel(context.Background(), cancelled.ID)
	var tErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &tErr)

	// completed with an outcome recorded is terminal too
	done := seedInterview(t, store, model.StatusCompleted)
	outcome := model.OutcomeSelected
	rec := store.stored(t, done.ID)
	rec.Outcome = &outcome
	store.records[done.ID] = rec
	_, err = eng.Cancel(context.Background(), done.ID)
	require.ErrorAs(t, err, &tErr)
}

func TestCancelViaUpdateStatus(t *testing.T) {
	eng, store, notifier, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	rec, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status: model.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, rec.Status)
	assert.Equal(t, 1, notifier.cancellations)
}

func TestDelete(t *testing.T) {
	eng, store, _, prov := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)

	require.NoError(t, eng.Delete(context.Background(), seeded.ID))
	assert.Equal(t, []string{"meeting-0"}, prov.cancels)

	_, err := eng.Get(context.Background(), seeded.ID)
	var nfErr *model.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDeleteUnknownID(t *testing.T) {
	eng, _, _, _ := newTestEngine()

	err := eng.Delete(context.Background(), uuid.New())
	var nfErr *model.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestVersionConflict(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusScheduled)

	// a concurrent writer bumps the stored version between our read and
	// our write
	rec := store.stored(t, seeded.ID)
	rec.Version++
	store.records[seeded.ID] = rec

	_, err := eng.UpdateStatus(context.Background(), seeded.ID, model.UpdateStatusReq{
		Status: model.StatusCompleted,
	})
	var cErr *model.ConflictError
	require.ErrorAs(t, err, &cErr)
}

// The record's status always matches the stage of the newest history
// entry, whatever path the record took.
func TestStatusTracksNewestHistoryEntry(t *testing.T) {
	eng, _, _, _ := newTestEngine()

	rec, err := eng.RequestAvailability(context.Background(), model.RequestAvailabilityReq{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		Position:       "Backend Engineer",
	})
	require.NoError(t, err)

	_, err = eng.Schedule(context.Background(), rec.ID, model.ScheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	}, nil)
	require.NoError(t, err)

	_, err = eng.UpdateStatus(context.Background(), rec.ID, model.UpdateStatusReq{Status: model.StatusCompleted})
	require.NoError(t, err)

	detail, err := eng.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotEmpty(t, detail.History)
	assert.Equal(t, detail.Status, detail.History[len(detail.History)-1].Stage)
}

func TestGetReturnsFullHistory(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	_, err := eng.Schedule(context.Background(), seeded.ID, model.ScheduleInterviewReq{
		ScheduledTime: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	}, nil)
	require.NoError(t, err)

	detail, err := eng.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, detail.Status)
	assert.Len(t, detail.History, 2)
}

func TestExportCalendarRequiresSchedule(t *testing.T) {
	eng, store, _, _ := newTestEngine()
	seeded := seedInterview(t, store, model.StatusAwaitingResponse)

	_, err := eng.ExportCalendar(context.Background(), seeded.ID, scheduling.FormatICS)
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "scheduled_time", vErr.Field)
}

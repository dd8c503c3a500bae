package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexus-hr/interview-coordinator/internal/graph"
	"github.com/nexus-hr/interview-coordinator/internal/notify"
	"github.com/nexus-hr/interview-coordinator/internal/scheduling"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"go.uber.org/zap"
)

// Store is the durable Interview Record Store consumed by the engine.
type Store interface {
	CreateInterview(ctx context.Context, rec *model.InterviewRecord, history []model.StageHistoryEntry) error
	GetInterview(ctx context.Context, id uuid.UUID) (*model.InterviewRecord, error)
	ListInterviews(ctx context.Context, query model.ListInterviewQuery) ([]model.InterviewRecord, int, error)
	UpdateInterview(ctx context.Context, rec *model.InterviewRecord, entry model.StageHistoryEntry) error
	DeleteInterview(ctx context.Context, id uuid.UUID) error
	ListHistory(ctx context.Context, id uuid.UUID) ([]model.StageHistoryEntry, error)
}

// Scheduler drives scheduling math, provisioning and calendar artifacts.
type Scheduler interface {
	ComputeSchedule(raw string, duration int) (scheduling.Schedule, error)
	ProvisionMeeting(ctx context.Context, rec *model.InterviewRecord, sched scheduling.Schedule) (graph.Meeting, error)
	ReleaseProvision(ctx context.Context, rec *model.InterviewRecord, start time.Time)
	CancelMeeting(ctx context.Context, rec *model.InterviewRecord) error
	BuildCalendarArtifact(rec *model.InterviewRecord, format scheduling.CalendarFormat) (*scheduling.Artifact, error)
}

// Notifier renders and delivers the workflow's emails.
type Notifier interface {
	CheckConnected(ctx context.Context) error
	SendAvailabilityRequest(ctx context.Context, rec *model.InterviewRecord, custom notify.Custom, cc, bcc string) error
	SendScheduleConfirmation(ctx context.Context, rec *model.InterviewRecord, ics []byte, resume *model.Attachment, custom notify.Custom, cc, bcc string) error
	SendRescheduleNotice(ctx context.Context, rec *model.InterviewRecord, oldTime time.Time, ics []byte, cc, bcc string) error
	SendCancellationNotice(ctx context.Context, rec *model.InterviewRecord) error
}

// Engine owns the interview state machine. All mutation of a record and
// its history goes through its intents; side effects that are a
// precondition for a transition run before anything is persisted, so a
// failure leaves the record in its prior state.
type Engine struct {
	Store     Store
	Scheduler Scheduler
	Notifier  Notifier
	Logger    *zap.Logger

	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func strptr(s string) *string { return &s }

// RequestAvailability creates the pipeline instance and sends the
// stage-one email. The initial_email stage is transient: the record is
// only ever persisted as awaiting_response, with both stages logged.
func (e *Engine) RequestAvailability(ctx context.Context, req model.RequestAvailabilityReq) (*model.InterviewRecord, error) {
	if strings.TrimSpace(req.CandidateName) == "" {
		return nil, &model.ValidationError{Field: "candidate_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.CandidateEmail) == "" {
		return nil, &model.ValidationError{Field: "candidate_email", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Position) == "" {
		return nil, &model.ValidationError{Field: "position", Reason: "must not be empty"}
	}

	if err := e.Notifier.CheckConnected(ctx); err != nil {
		return nil, err
	}

	now := e.now()
	rec := &model.InterviewRecord{
		ID:             uuid.New(),
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		Position:       req.Position,
		Status:         model.StatusInitialEmail,
		Duration:       model.DefaultDuration,
		Platform:       model.DefaultPlatform,
		GoogleFormLink: req.GoogleFormLink,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	custom := notify.Custom{Subject: req.Subject, Body: req.Body}
	if err := e.Notifier.SendAvailabilityRequest(ctx, rec, custom, req.CC, req.BCC); err != nil {
		return nil, err
	}

	// the send succeeded, so the transient initial_email stage collapses
	// straight into awaiting_response
	rec.Status = model.StatusAwaitingResponse
	history := []model.StageHistoryEntry{
		{Stage: model.StatusInitialEmail, Timestamp: now, Details: strptr("Initial availability request sent")},
		{Stage: model.StatusAwaitingResponse, Timestamp: now, Details: strptr("Waiting for candidate response")},
	}
	if err := e.Store.CreateInterview(ctx, rec, history); err != nil {
		return nil, fmt.Errorf("persist interview: %w", err)
	}

	e.Logger.Sugar().Infow("availability requested",
		"interview_id", rec.ID, "candidate", rec.CandidateEmail, "position", rec.Position)
	return rec, nil
}

// Schedule moves an awaiting_response record to scheduled: provision the
// meeting (idempotently, so a retry after a failed send reuses it), send
// the confirmation with the invite attached, then commit.
func (e *Engine) Schedule(ctx context.Context, id uuid.UUID, req model.ScheduleInterviewReq, resume *model.Attachment) (*model.InterviewRecord, error) {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(rec, IntentSchedule); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.ScheduledTime) == "" {
		return nil, &model.ValidationError{Field: "scheduled_time", Reason: "is required"}
	}
	interviewType := model.InterviewType(req.InterviewType)
	if req.InterviewType == "" {
		interviewType = model.InterviewTypeTechnical
	}
	if !interviewType.Valid() {
		return nil, &model.ValidationError{Field: "interview_type", Reason: fmt.Sprintf("unknown type %q", req.InterviewType)}
	}

	sched, err := e.Scheduler.ComputeSchedule(req.ScheduledTime, req.Duration)
	if err != nil {
		return nil, err
	}

	if err := e.Notifier.CheckConnected(ctx); err != nil {
		return nil, err
	}

	meeting, err := e.Scheduler.ProvisionMeeting(ctx, rec, sched)
	if err != nil {
		return nil, err
	}

	rec.Status = model.StatusScheduled
	rec.InterviewType = &interviewType
	rec.ScheduledTime = &sched.Start
	rec.Duration = sched.Duration
	if req.Platform != "" {
		rec.Platform = req.Platform
	}
	rec.MeetingLink = &meeting.JoinURL
	rec.MeetingRef = &meeting.Ref
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	ics, err := e.Scheduler.BuildCalendarArtifact(rec, scheduling.FormatICS)
	if err != nil {
		return nil, err
	}

	if err := e.Notifier.SendScheduleConfirmation(ctx, rec, ics.Content, resume, notify.Custom{}, req.CC, req.BCC); err != nil {
		return nil, err
	}

	entry := model.StageHistoryEntry{
		Stage:     model.StatusScheduled,
		Timestamp: e.now(),
		Details:   strptr(fmt.Sprintf("Interview scheduled via %s", rec.Platform)),
	}
	if err := e.Store.UpdateInterview(ctx, rec, entry); err != nil {
		return nil, err
	}
	rec.Version++

	e.Scheduler.ReleaseProvision(ctx, rec, sched.Start)

	e.Logger.Sugar().Infow("interview scheduled",
		"interview_id", rec.ID, "scheduled_time", sched.Start, "duration", sched.Duration)
	return rec, nil
}

// Reschedule moves an already-scheduled interview to a new slot. The
// previous scheduled time is preserved in the history entry for audit.
func (e *Engine) Reschedule(ctx context.Context, id uuid.UUID, req model.RescheduleInterviewReq) (*model.InterviewRecord, error) {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(rec, IntentReschedule); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ScheduledTime) == "" {
		return nil, &model.ValidationError{Field: "scheduled_time", Reason: "is required"}
	}

	duration := rec.Duration
	if req.Duration != nil {
		duration = *req.Duration
	}
	sched, err := e.Scheduler.ComputeSchedule(req.ScheduledTime, duration)
	if err != nil {
		return nil, err
	}

	if err := e.Notifier.CheckConnected(ctx); err != nil {
		return nil, err
	}

	oldTime := *rec.ScheduledTime
	oldRef := rec.MeetingRef

	meeting, err := e.Scheduler.ProvisionMeeting(ctx, rec, sched)
	if err != nil {
		return nil, err
	}

	// the old reservation is a convenience; failing to drop it must not
	// block the move
	if oldRef != nil && *oldRef != "" && *oldRef != meeting.Ref {
		old := *rec
		if err := e.Scheduler.CancelMeeting(ctx, &old); err != nil {
			e.Logger.Sugar().Warnw("failed to cancel previous meeting",
				"interview_id", rec.ID, "meeting_ref", *oldRef, "err", err)
		}
	}

	rec.ScheduledTime = &sched.Start
	rec.Duration = sched.Duration
	rec.MeetingLink = &meeting.JoinURL
	rec.MeetingRef = &meeting.Ref

	ics, err := e.Scheduler.BuildCalendarArtifact(rec, scheduling.FormatICS)
	if err != nil {
		return nil, err
	}

	if err := e.Notifier.SendRescheduleNotice(ctx, rec, oldTime, ics.Content, "", ""); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Rescheduled from %s", oldTime.Format(time.RFC3339))
	if req.Reason != nil && *req.Reason != "" {
		details += "; reason: " + *req.Reason
	}
	entry := model.StageHistoryEntry{
		Stage:     model.StatusScheduled,
		Timestamp: e.now(),
		Details:   &details,
	}
	if err := e.Store.UpdateInterview(ctx, rec, entry); err != nil {
		return nil, err
	}
	rec.Version++

	e.Scheduler.ReleaseProvision(ctx, rec, sched.Start)

	e.Logger.Sugar().Infow("interview rescheduled",
		"interview_id", rec.ID, "from", oldTime, "to", sched.Start)
	return rec, nil
}

// UpdateStatus handles the advance and set-outcome transitions, and
// admits cancellation through the same surface the old API exposed.
func (e *Engine) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusReq) (*model.InterviewRecord, error) {
	if req.Outcome != nil && !req.Outcome.Valid() {
		return nil, &model.ValidationError{Field: "outcome", Reason: fmt.Sprintf("must be %q or %q", model.OutcomeSelected, model.OutcomeRejected)}
	}

	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case model.StatusCompleted:
		if rec.Status == model.StatusCompleted {
			// outcome still pending: the only thing left to record
			if req.Outcome == nil {
				return nil, &model.ValidationError{Field: "outcome", Reason: "is required when the interview is already completed"}
			}
			if err := guard(rec, IntentSetOutcome); err != nil {
				return nil, err
			}
			rec.Outcome = req.Outcome
			entry := model.StageHistoryEntry{
				Stage:     model.StatusCompleted,
				Timestamp: e.now(),
				Details:   strptr(fmt.Sprintf("Outcome recorded: %s", *req.Outcome)),
			}
			if err := e.Store.UpdateInterview(ctx, rec, entry); err != nil {
				return nil, err
			}
			rec.Version++
			return rec, nil
		}

		if err := guard(rec, IntentAdvance); err != nil {
			return nil, err
		}
		if req.Outcome != nil {
			return nil, &model.ValidationError{Field: "outcome", Reason: "cannot be set while completing; record it once the interview is completed"}
		}
		rec.Status = model.StatusCompleted
		entry := model.StageHistoryEntry{
			Stage:     model.StatusCompleted,
			Timestamp: e.now(),
			Details:   strptr("Interview completed"),
		}
		if err := e.Store.UpdateInterview(ctx, rec, entry); err != nil {
			return nil, err
		}
		rec.Version++
		return rec, nil

	case model.StatusCancelled:
		return e.Cancel(ctx, id)

	default:
		return nil, &model.InvalidTransitionError{Current: rec.Status, Requested: fmt.Sprintf("set status %q", req.Status)}
	}
}

// Cancel closes the pipeline from any non-terminal state. Dropping the
// meeting and notifying the candidate are both best-effort.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (*model.InterviewRecord, error) {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(rec, IntentCancel); err != nil {
		return nil, err
	}

	if err := e.Scheduler.CancelMeeting(ctx, rec); err != nil {
		e.Logger.Sugar().Warnw("failed to cancel meeting", "interview_id", rec.ID, "err", err)
	}
	if err := e.Notifier.SendCancellationNotice(ctx, rec); err != nil {
		e.Logger.Sugar().Warnw("failed to send cancellation notice", "interview_id", rec.ID, "err", err)
	}

	rec.Status = model.StatusCancelled
	rec.MeetingLink = nil
	rec.MeetingRef = nil
	entry := model.StageHistoryEntry{
		Stage:     model.StatusCancelled,
		Timestamp: e.now(),
		Details:   strptr("Interview cancelled"),
	}
	if err := e.Store.UpdateInterview(ctx, rec, entry); err != nil {
		return nil, err
	}
	rec.Version++

	e.Logger.Sugar().Infow("interview cancelled", "interview_id", rec.ID)
	return rec, nil
}

// Delete hard-deletes the record and its history, best-effort cancelling
// any provisioned meeting first.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return err
	}

	if err := e.Scheduler.CancelMeeting(ctx, rec); err != nil {
		e.Logger.Sugar().Warnw("failed to cancel meeting before delete", "interview_id", rec.ID, "err", err)
	}

	if err := e.Store.DeleteInterview(ctx, id); err != nil {
		return err
	}
	e.Logger.Sugar().Infow("interview deleted", "interview_id", id)
	return nil
}

// Get returns the record together with its full stage history.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*model.InterviewDetail, error) {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := e.Store.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.InterviewDetail{InterviewRecord: *rec, History: history}, nil
}

func (e *Engine) List(ctx context.Context, query model.ListInterviewQuery) ([]model.InterviewRecord, int, error) {
	return e.Store.ListInterviews(ctx, query)
}

// ExportCalendar renders the record's reservation as a downloadable
// calendar artifact.
func (e *Engine) ExportCalendar(ctx context.Context, id uuid.UUID, format scheduling.CalendarFormat) (*scheduling.Artifact, error) {
	rec, err := e.Store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Scheduler.BuildCalendarArtifact(rec, format)
}

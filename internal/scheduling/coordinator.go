package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nexus-hr/interview-coordinator/internal/cache"
	"github.com/nexus-hr/interview-coordinator/internal/graph"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"go.uber.org/zap"
)

// Provisioner is the meeting side of the Graph client.
type Provisioner interface {
	CreateMeeting(ctx context.Context, req graph.MeetingRequest) (graph.Meeting, error)
	CancelMeeting(ctx context.Context, ref string) error
}

// Schedule is a normalized reservation: UTC start, derived end, minutes.
type Schedule struct {
	Start    time.Time
	End      time.Time
	Duration int
}

type Coordinator struct {
	Provisioner Provisioner
	Cache       cache.IdempotencyStore
	Logger      *zap.Logger

	// RejectPast turns on the guard the original workflow never had.
	RejectPast     bool
	IdempotencyTTL time.Duration

	OrganizerName  string
	OrganizerEmail string

	Now func() time.Time
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ComputeSchedule validates and normalizes a requested time slot.
// Durations default to 60 minutes; multiples of 15 are customary but not
// enforced.
func (c *Coordinator) ComputeSchedule(raw string, duration int) (Schedule, error) {
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Schedule{}, &model.ValidationError{Field: "scheduled_time", Reason: fmt.Sprintf("not a valid RFC3339 timestamp: %q", raw)}
	}
	if duration == 0 {
		duration = model.DefaultDuration
	}
	if duration < 0 {
		return Schedule{}, &model.ValidationError{Field: "duration", Reason: "must be positive"}
	}
	start = start.UTC()
	if c.RejectPast && start.Before(c.now()) {
		return Schedule{}, &model.ValidationError{Field: "scheduled_time", Reason: "is in the past"}
	}
	return Schedule{
		Start:    start,
		End:      start.Add(time.Duration(duration) * time.Minute),
		Duration: duration,
	}, nil
}

func provisionKey(id string, status model.Status, start time.Time) string {
	return fmt.Sprintf("provision:%s:%s:%d", id, status, start.Unix())
}

// ProvisionMeeting reserves the meeting for a schedule, idempotently: a
// retried call with the same (record, target status, start time) returns
// the meeting already created instead of booking a second one.
func (c *Coordinator) ProvisionMeeting(ctx context.Context, rec *model.InterviewRecord, sched Schedule) (graph.Meeting, error) {
	key := provisionKey(rec.ID.String(), model.StatusScheduled, sched.Start)

	if cached, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
		var m graph.Meeting
		if err := json.Unmarshal([]byte(cached), &m); err == nil && m.JoinURL != "" {
			c.Logger.Sugar().Infow("reusing provisioned meeting", "interview_id", rec.ID, "ref", m.Ref)
			return m, nil
		}
	} else if err != nil {
		c.Logger.Sugar().Warnw("idempotency store read failed", "interview_id", rec.ID, "err", err)
	}

	meeting, err := c.Provisioner.CreateMeeting(ctx, graph.MeetingRequest{
		Subject: fmt.Sprintf("Interview - %s - %s", rec.CandidateName, rec.Position),
		Start:   sched.Start,
		End:     sched.End,
	})
	if err != nil {
		return graph.Meeting{}, &model.ProvisioningError{Err: err}
	}

	if b, err := json.Marshal(meeting); err == nil {
		if err := c.Cache.Set(ctx, key, string(b), c.IdempotencyTTL); err != nil {
			c.Logger.Sugar().Warnw("idempotency store write failed", "interview_id", rec.ID, "err", err)
		}
	}
	return meeting, nil
}

// ReleaseProvision forgets the idempotency entry once a transition has
// been committed, so a later reschedule to the same slot books fresh.
func (c *Coordinator) ReleaseProvision(ctx context.Context, rec *model.InterviewRecord, start time.Time) {
	if err := c.Cache.Delete(ctx, provisionKey(rec.ID.String(), model.StatusScheduled, start)); err != nil {
		c.Logger.Sugar().Warnw("idempotency store delete failed", "interview_id", rec.ID, "err", err)
	}
}

// CancelMeeting is best-effort: the meeting resource is a convenience,
// not a consistency boundary. Callers log the error and move on.
func (c *Coordinator) CancelMeeting(ctx context.Context, rec *model.InterviewRecord) error {
	if rec.MeetingRef == nil || *rec.MeetingRef == "" {
		return nil
	}
	return c.Provisioner.CancelMeeting(ctx, *rec.MeetingRef)
}

package notify

import (
	"context"
	"strings"
	"time"

	"github.com/nexus-hr/interview-coordinator/internal/graph"
	"github.com/nexus-hr/interview-coordinator/pkg"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
	"go.uber.org/zap"
)

// Mailbox is the mail side of the Graph client.
type Mailbox interface {
	SendMessage(ctx context.Context, msg graph.Message) error
	ConnectionStatus(ctx context.Context) (graph.ConnectionStatus, error)
}

// Custom carries caller-supplied overrides. A custom body replaces the
// default template wholesale; it is never merged into it.
type Custom struct {
	Subject *string
	Body    *string
}

type Dispatcher struct {
	Mailbox Mailbox
	Logger  *zap.Logger

	// DedupRecipients strips the candidate address from CC/BCC. Off by
	// default, matching the source workflow.
	DedupRecipients bool
}

// CheckConnected short-circuits send-dependent intents before any
// delivery is attempted.
func (d *Dispatcher) CheckConnected(ctx context.Context) error {
	status, err := d.Mailbox.ConnectionStatus(ctx)
	if err != nil {
		return &model.DeliveryError{Err: err}
	}
	if !status.Connected {
		return model.ErrNotConnected
	}
	return nil
}

func (d *Dispatcher) recipients(primary, raw string) []string {
	list := pkg.SplitRecipients(raw)
	if !d.DedupRecipients {
		return list
	}
	out := list[:0]
	for _, addr := range list {
		if !strings.EqualFold(addr, primary) {
			out = append(out, addr)
		}
	}
	return out
}

func (d *Dispatcher) send(ctx context.Context, msg graph.Message) error {
	if err := d.Mailbox.SendMessage(ctx, msg); err != nil {
		return &model.DeliveryError{Err: err}
	}
	return nil
}

// SendAvailabilityRequest delivers the stage-one email asking the
// candidate for time slots.
func (d *Dispatcher) SendAvailabilityRequest(ctx context.Context, rec *model.InterviewRecord, custom Custom, cc, bcc string) error {
	subject := "Interview Opportunity - " + rec.Position
	if custom.Subject != nil {
		subject = *custom.Subject
	}
	body := availabilityRequestHTML(rec)
	if custom.Body != nil {
		body = wrapCustomContent(*custom.Body)
	}

	return d.send(ctx, graph.Message{
		To:       []string{rec.CandidateEmail},
		CC:       d.recipients(rec.CandidateEmail, cc),
		BCC:      d.recipients(rec.CandidateEmail, bcc),
		Subject:  subject,
		HTMLBody: body,
	})
}

// SendScheduleConfirmation delivers the stage-two confirmation with the
// calendar invite attached, plus the candidate's résumé when supplied.
func (d *Dispatcher) SendScheduleConfirmation(ctx context.Context, rec *model.InterviewRecord, ics []byte, resume *model.Attachment, custom Custom, cc, bcc string) error {
	subject := "Interview Scheduled - " + rec.Position
	if custom.Subject != nil {
		subject = *custom.Subject
	}
	body := scheduleConfirmationHTML(rec)
	if custom.Body != nil {
		body = wrapCustomContent(*custom.Body)
	}

	var attachments []model.Attachment
	if len(ics) > 0 {
		attachments = append(attachments, model.Attachment{
			Filename:    "interview.ics",
			ContentType: "text/calendar",
			Content:     ics,
		})
	}
	if resume != nil {
		attachments = append(attachments, *resume)
	}

	return d.send(ctx, graph.Message{
		To:          []string{rec.CandidateEmail},
		CC:          d.recipients(rec.CandidateEmail, cc),
		BCC:         d.recipients(rec.CandidateEmail, bcc),
		Subject:     subject,
		HTMLBody:    body,
		Attachments: attachments,
	})
}

// SendRescheduleNotice tells the candidate the slot moved, with the
// refreshed invite attached.
func (d *Dispatcher) SendRescheduleNotice(ctx context.Context, rec *model.InterviewRecord, oldTime time.Time, ics []byte, cc, bcc string) error {
	var attachments []model.Attachment
	if len(ics) > 0 {
		attachments = append(attachments, model.Attachment{
			Filename:    "interview.ics",
			ContentType: "text/calendar",
			Content:     ics,
		})
	}

	return d.send(ctx, graph.Message{
		To:          []string{rec.CandidateEmail},
		CC:          d.recipients(rec.CandidateEmail, cc),
		BCC:         d.recipients(rec.CandidateEmail, bcc),
		Subject:     "Interview Rescheduled - " + rec.Position,
		HTMLBody:    rescheduleNoticeHTML(rec, oldTime),
		Attachments: attachments,
	})
}

// SendCancellationNotice is best-effort; callers log the error and let
// the cancellation commit regardless.
func (d *Dispatcher) SendCancellationNotice(ctx context.Context, rec *model.InterviewRecord) error {
	return d.send(ctx, graph.Message{
		To:       []string{rec.CandidateEmail},
		Subject:  "Interview Cancelled - " + rec.Position,
		HTMLBody: cancellationNoticeHTML(rec),
	})
}

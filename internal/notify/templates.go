package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

// Template rendering is literal interpolation of candidate name,
// position and links. When a caller supplies custom content the defaults
// below are bypassed wholesale.

const emailTimeLayout = "Monday, 02 Jan 2006 15:04 MST"

func wrapCustomContent(content string) string {
	formatted := strings.ReplaceAll(content, "\n", "<br>")
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px">%s</body></html>`, formatted)
}

func availabilityRequestHTML(rec *model.InterviewRecord) string {
	var formSection string
	if rec.GoogleFormLink != nil && *rec.GoogleFormLink != "" {
		formSection = fmt.Sprintf(`<p>Before we proceed with scheduling, please fill out the pre-interview form: <a href="%s">%s</a></p>`, *rec.GoogleFormLink, *rec.GoogleFormLink)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:20px"><h2>Interview Opportunity</h2><p>Dear <strong>%s</strong>,</p><p>We are pleased to inform you that we would like to invite you for an interview for the <strong>%s</strong> position at our company.</p>%s<p>Please reply to this email with your available time slots within the next 3 business days.</p><p>We look forward to meeting you!</p><p>Best regards,<br><strong>HR Team</strong></p></body></html>`,
		rec.CandidateName, rec.Position, formSection)
}

func scheduleConfirmationHTML(rec *model.InterviewRecord) string {
	scheduled := ""
	if rec.ScheduledTime != nil {
		scheduled = rec.ScheduledTime.Format(emailTimeLayout)
	}
	var linkSection string
	if rec.MeetingLink != nil && *rec.MeetingLink != "" {
		linkSection = fmt.Sprintf(`<p><a href="%s" style="color:#3b82f6">Join Meeting</a></p>`, *rec.MeetingLink)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:20px"><h2>Interview Confirmed</h2><p>Dear <strong>%s</strong>,</p><p>Your interview for the <strong>%s</strong> position has been scheduled.</p><div style="background:#f9fafb;padding:20px;border-radius:8px;margin:20px 0"><h3>Interview Details</h3><p><strong>Date &amp; Time:</strong> %s</p><p><strong>Duration:</strong> %d minutes</p><p><strong>Platform:</strong> %s</p>%s</div><p>Please add this interview to your calendar using the attached calendar file.</p><p>If you need to reschedule, please let us know as soon as possible.</p><p>Best regards,<br><strong>HR Team</strong></p></body></html>`,
		rec.CandidateName, rec.Position, scheduled, rec.Duration, rec.Platform, linkSection)
}

func rescheduleNoticeHTML(rec *model.InterviewRecord, oldTime time.Time) string {
	newScheduled := ""
	if rec.ScheduledTime != nil {
		newScheduled = rec.ScheduledTime.Format(emailTimeLayout)
	}
	var linkSection string
	if rec.MeetingLink != nil && *rec.MeetingLink != "" {
		linkSection = fmt.Sprintf(`<p><a href="%s" style="color:#3b82f6">Join Meeting</a></p>`, *rec.MeetingLink)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:20px"><h2>Interview Rescheduled</h2><p>Dear <strong>%s</strong>,</p><p>Your interview for the <strong>%s</strong> position has been rescheduled.</p><div style="background:#fef3c7;padding:16px;border-left:4px solid #f59e0b;margin:20px 0"><p><strong>Original:</strong> <span style="text-decoration:line-through;color:#dc2626">%s</span></p><p><strong>New:</strong> <span style="color:#16a34a;font-weight:600">%s</span></p></div>%s<p>Please update your calendar accordingly.</p><p>Best regards,<br><strong>HR Team</strong></p></body></html>`,
		rec.CandidateName, rec.Position, oldTime.Format(emailTimeLayout), newScheduled, linkSection)
}

func cancellationNoticeHTML(rec *model.InterviewRecord) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:20px"><h2>Interview Cancelled</h2><p>Dear <strong>%s</strong>,</p><p>Your interview for the <strong>%s</strong> position has been cancelled. We apologise for any inconvenience.</p><p>If this comes as a surprise, please reach out to us.</p><p>Best regards,<br><strong>HR Team</strong></p></body></html>`,
		rec.CandidateName, rec.Position)
}

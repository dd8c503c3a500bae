package scheduling

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nexus-hr/interview-coordinator/pkg"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

type CalendarFormat string

const (
	FormatICS     CalendarFormat = "ics"
	FormatGoogle  CalendarFormat = "google"
	FormatOutlook CalendarFormat = "outlook"
)

// Artifact is a downloadable calendar payload.
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}

const icsTimeLayout = "20060102T150405Z"

// escapeICS escapes text per RFC 5545: backslash first, then the
// structural characters and newlines.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BuildCalendarArtifact renders the record's reservation in one of the
// interoperable formats. Pure: it only fails when the record has no
// scheduled time.
func (c *Coordinator) BuildCalendarArtifact(rec *model.InterviewRecord, format CalendarFormat) (*Artifact, error) {
	if rec.ScheduledTime == nil {
		return nil, &model.ValidationError{Field: "scheduled_time", Reason: "interview does not have a scheduled time"}
	}

	duration := rec.Duration
	if duration <= 0 {
		duration = model.DefaultDuration
	}
	start := rec.ScheduledTime.UTC()
	end := start.Add(time.Duration(duration) * time.Minute)
	summary := fmt.Sprintf("Interview - %s - %s", rec.CandidateName, rec.Position)
	description := c.artifactDescription(rec)
	location := rec.Platform
	if link := deref(rec.MeetingLink); link != "" {
		location = link
	}

	switch format {
	case FormatICS:
		return &Artifact{
			Filename:    fmt.Sprintf("interview-%s.ics", pkg.SafeFileName(rec.CandidateName)),
			ContentType: "text/calendar; charset=utf-8",
			Content:     []byte(c.buildICS(rec, summary, description, location, start, end)),
		}, nil
	case FormatGoogle:
		u := url.Values{
			"action":   {"TEMPLATE"},
			"text":     {summary},
			"dates":    {start.Format(icsTimeLayout) + "/" + end.Format(icsTimeLayout)},
			"details":  {description},
			"location": {location},
		}
		link := "https://calendar.google.com/calendar/render?" + u.Encode()
		return &Artifact{Filename: "google-calendar.txt", ContentType: "text/plain; charset=utf-8", Content: []byte(link)}, nil
	case FormatOutlook:
		u := url.Values{
			"subject":  {summary},
			"startdt":  {start.Format(time.RFC3339)},
			"enddt":    {end.Format(time.RFC3339)},
			"body":     {description},
			"location": {location},
		}
		link := "https://outlook.live.com/calendar/0/deeplink/compose?" + u.Encode()
		return &Artifact{Filename: "outlook-calendar.txt", ContentType: "text/plain; charset=utf-8", Content: []byte(link)}, nil
	default:
		return nil, &model.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown calendar format %q", format)}
	}
}

func (c *Coordinator) artifactDescription(rec *model.InterviewRecord) string {
	var b strings.Builder
	interviewType := "Interview"
	if rec.InterviewType != nil {
		interviewType = string(*rec.InterviewType) + " interview"
	}
	fmt.Fprintf(&b, "%s for the %s position.", interviewType, rec.Position)
	if link := deref(rec.MeetingLink); link != "" {
		fmt.Fprintf(&b, "\nJoin: %s", link)
	}
	if notes := deref(rec.Notes); notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", notes)
	}
	return b.String()
}

func (c *Coordinator) buildICS(rec *model.InterviewRecord, summary, description, location string, start, end time.Time) string {
	organizerName := c.OrganizerName
	if organizerName == "" {
		organizerName = "HR Team"
	}
	organizerEmail := c.OrganizerEmail
	if organizerEmail == "" {
		organizerEmail = "hr@nexus-hr.example"
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Interview Coordinator//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@interview-coordinator", rec.ID),
		"DTSTAMP:" + c.now().UTC().Format(icsTimeLayout),
		"DTSTART:" + start.Format(icsTimeLayout),
		"DTEND:" + end.Format(icsTimeLayout),
		"SUMMARY:" + escapeICS(summary),
		"DESCRIPTION:" + escapeICS(description),
		"LOCATION:" + escapeICS(location),
		fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s", escapeICS(organizerName), organizerEmail),
		fmt.Sprintf("ATTENDEE;CN=%s;RSVP=TRUE:mailto:%s", escapeICS(rec.CandidateName), rec.CandidateEmail),
		"STATUS:CONFIRMED",
		"SEQUENCE:0",
		"BEGIN:VALARM",
		"TRIGGER:-PT15M",
		"ACTION:DISPLAY",
		"DESCRIPTION:Interview reminder",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInitialEmail     Status = "initial_email"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusScheduled        Status = "scheduled"
	StatusCompleted        Status = "completed"
	StatusRejected         Status = "rejected"
	StatusCancelled        Status = "cancelled"
)

type Outcome string

const (
	OutcomeSelected Outcome = "selected"
	OutcomeRejected Outcome = "rejected"
)

type InterviewType string

const (
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeCultural   InterviewType = "cultural"
	InterviewTypeFinal      InterviewType = "final"
	InterviewTypeHR         InterviewType = "hr"
)

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewTypeTechnical, InterviewTypeBehavioral, InterviewTypeCultural, InterviewTypeFinal, InterviewTypeHR:
		return true
	}
	return false
}

func (o Outcome) Valid() bool {
	return o == OutcomeSelected || o == OutcomeRejected
}

const (
	DefaultDuration = 60
	DefaultPlatform = "virtual-meeting"
)

type InterviewRecord struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	CandidateName  string         `json:"candidate_name" db:"candidate_name"`
	CandidateEmail string         `json:"candidate_email" db:"candidate_email"`
	Position       string         `json:"position" db:"position"`
	Status         Status         `json:"status" db:"status"`
	Outcome        *Outcome       `json:"outcome,omitempty" db:"outcome"`
	InterviewType  *InterviewType `json:"interview_type,omitempty" db:"interview_type"`
	ScheduledTime  *time.Time     `json:"scheduled_time,omitempty" db:"scheduled_time"`
	Duration       int            `json:"duration" db:"duration"`
	Platform       string         `json:"platform" db:"platform"`
	MeetingLink    *string        `json:"meeting_link,omitempty" db:"meeting_link"`
	MeetingRef     *string        `json:"-" db:"meeting_ref"`
	GoogleFormLink *string        `json:"google_form_link,omitempty" db:"google_form_link"`
	Notes          *string        `json:"notes,omitempty" db:"notes"`
	Version        int64          `json:"version" db:"version"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether no further transition can leave this record.
// A completed record with no outcome is still waiting for one.
func (r *InterviewRecord) Terminal() bool {
	switch r.Status {
	case StatusRejected, StatusCancelled:
		return true
	case StatusCompleted:
		return r.Outcome != nil
	}
	return false
}

type Stage = Status

type StageHistoryEntry struct {
	ID          int64     `json:"-" db:"id"`
	InterviewID uuid.UUID `json:"-" db:"interview_id"`
	Stage       Stage     `json:"stage" db:"stage"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Details     *string   `json:"details,omitempty" db:"details"`
}

// MailboxAccount is the connected sender account. Tokens are stored
// AES-GCM sealed, never in the clear.
type MailboxAccount struct {
	ID           int64     `json:"id" db:"id"`
	AccountEmail string    `json:"account_email" db:"account_email"`
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type RequestAvailabilityReq struct {
	CandidateName  string  `json:"candidate_name" binding:"required"`
	CandidateEmail string  `json:"candidate_email" binding:"required,email"`
	Position       string  `json:"position" binding:"required"`
	GoogleFormLink *string `json:"google_form_link,omitempty"`
	Subject        *string `json:"subject,omitempty"`
	Body           *string `json:"body,omitempty"`
	CC             string  `json:"cc,omitempty"`
	BCC            string  `json:"bcc,omitempty"`
}

// ScheduleInterviewReq arrives as JSON or as a multipart form when a
// résumé file rides along.
type ScheduleInterviewReq struct {
	InterviewType string  `json:"interview_type" form:"interview_type"`
	ScheduledTime string  `json:"scheduled_time" form:"scheduled_time" binding:"required"`
	Duration      int     `json:"duration" form:"duration"`
	Platform      string  `json:"platform" form:"platform"`
	Notes         *string `json:"notes,omitempty" form:"notes"`
	CC            string  `json:"cc,omitempty" form:"cc"`
	BCC           string  `json:"bcc,omitempty" form:"bcc"`
}

type RescheduleInterviewReq struct {
	ScheduledTime string  `json:"scheduled_time" binding:"required"`
	Duration      *int    `json:"duration,omitempty"`
	Reason        *string `json:"reason,omitempty"`
}

type UpdateStatusReq struct {
	Status  Status   `json:"status" binding:"required"`
	Outcome *Outcome `json:"outcome,omitempty"`
}

type ListInterviewQuery struct {
	Page     int     `json:"page" form:"page,default=1"`
	PageSize int     `json:"page_size" form:"page_size,default=20"`
	Status   *Status `json:"status" form:"status"`
}

type InterviewDetail struct {
	InterviewRecord
	History []StageHistoryEntry `json:"history"`
}

// Attachment is a caller-supplied file forwarded unmodified to the
// mailbox connector (résumé on the confirmation email).
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

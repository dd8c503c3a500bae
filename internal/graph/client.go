package graph

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

// Client talks to the Microsoft Graph API on behalf of the connected
// mailbox account. It is both the mailbox connector (sendMail) and the
// meeting provisioner (onlineMeetings).
type Client struct {
	base   string
	tokens TokenSource
	http   *http.Client
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		base:   baseURL,
		tokens: tokens,
		http:   &http.Client{Timeout: timeout},
	}
}

type Message struct {
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	HTMLBody    string
	Attachments []model.Attachment
}

type ConnectionStatus struct {
	Connected    bool    `json:"connected"`
	AccountEmail *string `json:"account_email"`
}

type MeetingRequest struct {
	Subject string
	Start   time.Time
	End     time.Time
}

type Meeting struct {
	JoinURL string
	Ref     string
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

func recipients(addrs []string) []graphRecipient {
	out := make([]graphRecipient, 0, len(addrs))
	for _, a := range addrs {
		var r graphRecipient
		r.EmailAddress.Address = a
		out = append(out, r)
	}
	return out
}

// SendMessage delivers one email through /me/sendMail. A 2xx from Graph
// means the message was accepted; anything else is an error.
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	attachments := make([]graphAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Filename,
			ContentType:  a.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"subject": msg.Subject,
			"body": map[string]string{
				"contentType": "HTML",
				"content":     msg.HTMLBody,
			},
			"toRecipients":  recipients(msg.To),
			"ccRecipients":  recipients(msg.CC),
			"bccRecipients": recipients(msg.BCC),
			"attachments":   attachments,
		},
		"saveToSentItems": true,
	}

	return c.do(ctx, http.MethodPost, "/me/sendMail", payload, nil)
}

// ConnectionStatus reports whether a mailbox account is usable. A missing
// account is a normal answer here, not an error.
func (c *Client) ConnectionStatus(ctx context.Context) (ConnectionStatus, error) {
	var me struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	err := c.do(ctx, http.MethodGet, "/me", nil, &me)
	if errors.Is(err, model.ErrNotConnected) {
		return ConnectionStatus{Connected: false}, nil
	}
	if err != nil {
		return ConnectionStatus{Connected: false}, err
	}
	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}
	return ConnectionStatus{Connected: true, AccountEmail: &email}, nil
}

// CreateMeeting reserves an online meeting and returns the join link
// plus the provider's resource id for later cancellation.
func (c *Client) CreateMeeting(ctx context.Context, req MeetingRequest) (Meeting, error) {
	payload := map[string]interface{}{
		"subject":       req.Subject,
		"startDateTime": req.Start.UTC().Format(time.RFC3339),
		"endDateTime":   req.End.UTC().Format(time.RFC3339),
	}

	var out struct {
		ID         string `json:"id"`
		JoinWebURL string `json:"joinWebUrl"`
	}
	if err := c.do(ctx, http.MethodPost, "/me/onlineMeetings", payload, &out); err != nil {
		return Meeting{}, err
	}
	return Meeting{JoinURL: out.JoinWebURL, Ref: out.ID}, nil
}

func (c *Client) CancelMeeting(ctx context.Context, ref string) error {
	return c.do(ctx, http.MethodDelete, "/me/onlineMeetings/"+ref, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode graph request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	r, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("graph api error: %s: %s", resp.Status, string(respBytes))
	}

	if out != nil && len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode graph response: %w", err)
		}
	}
	return nil
}

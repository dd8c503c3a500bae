package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nexus-hr/interview-coordinator/pkg"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

// TokenSource yields a bearer token for Graph calls. Returns
// model.ErrNotConnected when no mailbox account is available.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", model.ErrNotConnected
	}
	return string(s), nil
}

// AccountStore is the slice of the record store the token source needs.
type AccountStore interface {
	GetMailboxAccount(ctx context.Context) (*model.MailboxAccount, error)
	UpdateMailboxTokens(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error
}

// RefreshingTokenSource loads the sealed tokens of the connected account
// and refreshes them against the OAuth endpoint when expired, persisting
// any rotated refresh token.
type RefreshingTokenSource struct {
	Store        AccountStore
	Crypto       *pkg.Crypto
	TokenURL     string
	ClientID     string
	ClientSecret string

	mu   sync.Mutex
	http *http.Client
}

const graphScope = "https://graph.microsoft.com/Mail.Send https://graph.microsoft.com/User.Read https://graph.microsoft.com/OnlineMeetings.ReadWrite"

func (s *RefreshingTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.Store.GetMailboxAccount(ctx)
	if err != nil {
		return "", err
	}
	if account == nil || account.AccessToken == "" {
		return "", model.ErrNotConnected
	}

	access, err := s.Crypto.Decrypt(account.AccessToken)
	if err != nil {
		return "", fmt.Errorf("unseal access token: %w", err)
	}

	if time.Now().Before(account.ExpiresAt.Add(-time.Minute)) {
		return access, nil
	}

	if account.RefreshToken == "" {
		return "", model.ErrNotConnected
	}
	refresh, err := s.Crypto.Decrypt(account.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("unseal refresh token: %w", err)
	}

	return s.refresh(ctx, account, refresh)
}

func (s *RefreshingTokenSource) refresh(ctx context.Context, account *model.MailboxAccount, refreshToken string) (string, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return "", fmt.Errorf("oauth client credentials not configured: %w", model.ErrNotConnected)
	}

	form := url.Values{
		"client_id":     {s.ClientID},
		"client_secret": {s.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
		"scope":         {graphScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("refresh token rejected: %s: %s", resp.Status, string(body))
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	sealedAccess, err := s.Crypto.Encrypt(out.AccessToken)
	if err != nil {
		return "", err
	}
	rotated := refreshToken
	if out.RefreshToken != "" {
		rotated = out.RefreshToken
	}
	sealedRefresh, err := s.Crypto.Encrypt(rotated)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	if err := s.Store.UpdateMailboxTokens(ctx, account.ID, sealedAccess, sealedRefresh, expiresAt); err != nil {
		return "", fmt.Errorf("persist rotated tokens: %w", err)
	}

	return out.AccessToken, nil
}

func (s *RefreshingTokenSource) httpClient() *http.Client {
	if s.http == nil {
		s.http = &http.Client{Timeout: 30 * time.Second}
	}
	return s.http
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

// The mailbox account itself is connected through the portal's auth
// module; this service only reads it and rotates tokens on refresh.

func (r *Repository) GetMailboxAccount(ctx context.Context) (*model.MailboxAccount, error) {
	const q = `
SELECT id, account_email, access_token, refresh_token, expires_at, updated_at
FROM mailbox_accounts
ORDER BY updated_at DESC
LIMIT 1
`
	var a model.MailboxAccount
	err := r.db.QueryRow(ctx, q).Scan(&a.ID, &a.AccountEmail, &a.AccessToken, &a.RefreshToken, &a.ExpiresAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mailbox account: %w", err)
	}
	return &a, nil
}

func (r *Repository) UpdateMailboxTokens(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error {
	const q = `
UPDATE mailbox_accounts
SET access_token = $1, refresh_token = $2, expires_at = $3, updated_at = now()
WHERE id = $4
`
	tag, err := r.db.Exec(ctx, q, access, refresh, expiresAt, id)
	if err != nil {
		return fmt.Errorf("update mailbox tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mailbox account %d not found", id)
	}
	return nil
}

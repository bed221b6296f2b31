package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/archsystems/authgate/internal/authd/domain"
	"github.com/archsystems/authgate/internal/authd/store"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_resets (id, user_id, token_fingerprint, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pr.ID,
		pr.UserID,
		pr.TokenFingerprint,
		pr.ExpiresAt,
		pr.Used,
		pr.CreatedAt,
	)
	return mapConflict(err)
}

func (r *passwordResetsRepo) GetActiveResetByFingerprint(ctx context.Context, fingerprint string) (domain.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_fingerprint, expires_at, used, created_at
		 FROM password_resets
		 WHERE token_fingerprint = ? AND used = 0 AND expires_at > ?`,
		fingerprint, time.Now().UTC())

	var pr domain.PasswordReset
	err := row.Scan(&pr.ID, &pr.UserID, &pr.TokenFingerprint, &pr.ExpiresAt, &pr.Used, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	return pr, nil
}

func (r *passwordResetsRepo) MarkResetUsed(ctx context.Context, resetID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_resets SET used = 1 WHERE id = ? AND used = 0`, resetID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *passwordResetsRepo) InvalidateUserResets(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE password_resets SET used = 1 WHERE user_id = ? AND used = 0`, userID)
	return err
}

func (r *passwordResetsRepo) DeleteExpiredResets(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at <= ? OR used = 1`,
		time.Now().UTC())
	return err
}

// requireRow maps a zero-row mutation onto ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

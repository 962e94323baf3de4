package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// utcDay returns the current UTC calendar day key.
func utcDay() string {
	return time.Now().UTC().Format("2006-01-02")
}

// RecordUsage adds tokens to userID's running total for the current UTC
// day. Implements nlp.UsageLedger.
func (s *Store) RecordUsage(ctx context.Context, userID string, tokens int) error {
	if tokens <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oracle_usage (user_id, day, tokens, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, day)
		DO UPDATE SET tokens = tokens + excluded.tokens, updated_at = CURRENT_TIMESTAMP
	`, userID, utcDay(), tokens)
	if err != nil {
		return fmt.Errorf("store: record usage: %w", err)
	}
	return nil
}

// UsedToday returns the tokens userID has consumed in the current UTC day.
// Implements nlp.UsageLedger.
func (s *Store) UsedToday(ctx context.Context, userID string) (int, error) {
	var tokens int
	err := s.db.QueryRowContext(ctx,
		"SELECT tokens FROM oracle_usage WHERE user_id = ? AND day = ?",
		userID, utcDay(),
	).Scan(&tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read usage: %w", err)
	}
	return tokens, nil
}

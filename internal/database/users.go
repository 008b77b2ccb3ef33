package database

import (
	"context"
	"database/sql"
	"fmt"

	"wordpair/internal/models"
)

// ListUsers returns every enrolled participant.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, fcm_token, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			u     models.User
			token sql.NullString
			email sql.NullString
		)
		if err := rows.Scan(&u.ID, &token, &email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.FCMToken = token.String
		u.Email = email.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

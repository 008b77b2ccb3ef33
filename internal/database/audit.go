package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditTableNames lists tables included in audit exports.
var AuditTableNames = []string{
	"users",
	"daily_status",
	"dispatch_audit",
}

// AuditRow is one per-user outcome from a dispatch run.
type AuditRow struct {
	RunID   string
	Trigger string
	Date    string
	UserID  string
	Channel string
	Outcome string
	Error   string
}

// InsertAuditRows records the per-user outcomes of a dispatch run.
func (db *DB) InsertAuditRows(ctx context.Context, rows []AuditRow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dispatch_audit (run_id, trigger_name, date, user_id, channel, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.Trigger, r.Date, r.UserID, r.Channel, r.Outcome, r.Error); err != nil {
			return fmt.Errorf("insert audit row: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteOldAuditRows deletes audit rows older than the given duration.
func (db *DB) DeleteOldAuditRows(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := db.ExecContext(ctx,
		`DELETE FROM dispatch_audit WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old audit rows: %w", err)
	}
	return res.RowsAffected()
}

// GetTableNames returns list of table names to export.
func (db *DB) GetTableNames(ctx context.Context) ([]string, error) {
	return AuditTableNames, nil
}

// GetTableData returns all rows from a table as maps.
func (db *DB) GetTableData(ctx context.Context, tableName string) (data []map[string]interface{}, columns []string, err error) {
	// Validate table name to prevent SQL injection
	validTable := false
	for _, t := range AuditTableNames {
		if t == tableName {
			validTable = true
			break
		}
	}
	if !validTable {
		return nil, nil, fmt.Errorf("invalid table name: %s", tableName)
	}

	var rows *sql.Rows
	rows, err = db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var cid int
		var name, typeName string
		var notNull, pk int
		var dfltValue sql.NullString
		if err = rows.Scan(&cid, &name, &typeName, &notNull, &dfltValue, &pk); err != nil {
			rows.Close()
			return nil, nil, err
		}
		columns = append(columns, name)
	}
	rows.Close()

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table %s has no columns", tableName)
	}

	var dataRows *sql.Rows
	dataRows, err = db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", tableName))
	if err != nil {
		return nil, nil, err
	}
	defer dataRows.Close()

	for dataRows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err = dataRows.Scan(pointers...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		data = append(data, row)
	}
	return data, columns, dataRows.Err()
}

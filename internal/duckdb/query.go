package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"surveyforge/internal/validate"
)

// RunRow is one stored run.
type RunRow struct {
	RunID      string           `json:"run_id"`
	SurveyKey  string           `json:"survey_key,omitempty"`
	SurveyPath string           `json:"survey_path"`
	Status     string           `json:"status"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	Summary    validate.Summary `json:"summary"`
	IssueCount int              `json:"issue_count"`
}

// CheckCount aggregates how often a check fired.
type CheckCount struct {
	CheckID     string            `json:"check_id"`
	Severity    validate.Severity `json:"severity"`
	Occurrences int               `json:"occurrences"`
	Runs        int               `json:"runs"`
}

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	query := `SELECT run_id, COALESCE(survey_key, ''), survey_path, status, started_at, duration_ms,
	  errors, warnings, auto_fixes, advisories, issue_count
	FROM runs
	ORDER BY started_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(
			&row.RunID, &row.SurveyKey, &row.SurveyPath, &row.Status, &row.StartedAt, &row.DurationMS,
			&row.Summary.Errors, &row.Summary.Warnings, &row.Summary.AutoFixes, &row.Summary.Advisories,
			&row.IssueCount,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RunResults returns the stored results of a run in their original order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]validate.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT check_id, check_name, severity, COALESCE(question_id, ''), COALESCE(section, ''), message,
		   COALESCE(action_taken, ''), COALESCE(suggestion, '')
		 FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("run results: %w", err)
	}
	defer rows.Close()

	var out []validate.Result
	for rows.Next() {
		var r validate.Result
		var severity string
		if err := rows.Scan(&r.CheckID, &r.CheckName, &severity, &r.QuestionID, &r.Section, &r.Message, &r.ActionTaken, &r.Suggestion); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Severity = validate.Severity(severity)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CheckCounts returns per-check totals, most frequent first.
func (s *Store) CheckCounts(ctx context.Context) ([]CheckCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT check_id, severity, occurrences, runs
		 FROM v_check_counts ORDER BY occurrences DESC, check_id, severity`)
	if err != nil {
		return nil, fmt.Errorf("check counts: %w", err)
	}
	defer rows.Close()

	var out []CheckCount
	for rows.Next() {
		var c CheckCount
		var severity string
		if err := rows.Scan(&c.CheckID, &severity, &c.Occurrences, &c.Runs); err != nil {
			return nil, fmt.Errorf("scan check count: %w", err)
		}
		c.Severity = validate.Severity(severity)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountSurveys returns the number of distinct stored surveys.
func (s *Store) CountSurveys(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM surveys").Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// Package duckdb stores validation run history in a DuckDB database.
package duckdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"surveyforge/internal/pipeline"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// schemaDDL holds the DuckDB schema definition.
//
//go:embed schema.sql
var schemaDDL string

// SchemaDDL returns the schema DDL used for initializing DuckDB databases.
func SchemaDDL() string {
	return schemaDDL
}

// EnsureSchema applies the schema DDL to the provided database connection.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}

// Store persists pipeline records. It implements pipeline.Recorder.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	// mu serializes writers; batch workers record concurrently.
	mu sync.Mutex
}

var _ pipeline.Recorder = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema. An
// empty path opens an in-memory database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one run with its results and issues in a single transaction.
// The survey body is stored once per survey_key.
func (s *Store) Record(ctx context.Context, rec pipeline.Record) error {
	if ctx == nil {
		return errors.New("duckdb: context is nil")
	}
	if rec.RunID == "" {
		return errors.New("duckdb: run_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var surveyKey any
	if rec.Survey != nil {
		key, err := upsertSurvey(ctx, tx, rec.Survey, rec.StartedAt)
		if err != nil {
			return err
		}
		surveyKey = key
	}

	summary := validate.Summarize(rec.Results)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
		  run_id, survey_key, survey_path, status, started_at, duration_ms,
		  errors, warnings, auto_fixes, advisories, issue_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, surveyKey, rec.SurveyPath, rec.Status, rec.StartedAt.UTC(), rec.Duration.Milliseconds(),
		summary.Errors, summary.Warnings, summary.AutoFixes, summary.Advisories, len(rec.Issues),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, r := range rec.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (
			  run_id, seq, check_id, check_name, severity, question_id, section, message, action_taken, suggestion
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, i, r.CheckID, r.CheckName, string(r.Severity),
			nullable(r.QuestionID), nullable(r.Section), r.Message, nullable(r.ActionTaken), nullable(r.Suggestion),
		); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}
	for _, issue := range rec.Issues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO issues (run_id, issue_id, fingerprint, error_code, json_path, message)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.RunID, issue.IssueID, issue.Fingerprint, issue.ErrorCode, issue.JSONPath, issue.Message,
		); err != nil {
			return fmt.Errorf("insert issue %s: %w", issue.IssueID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("run recorded",
		zap.String("run_id", rec.RunID),
		zap.Int("results", len(rec.Results)),
		zap.Int("issues", len(rec.Issues)))
	return nil
}

func upsertSurvey(ctx context.Context, tx *sql.Tx, doc *survey.Document, at time.Time) (string, error) {
	canonical, err := CanonicalJSON(doc.Tree())
	if err != nil {
		return "", err
	}
	key := fingerprintBytes(canonical)
	studyType := survey.Text(doc.Object(survey.SectionStudyMetadata)["study_type"])
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO surveys (survey_key, survey, study_type, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (survey_key) DO NOTHING`,
		key, string(canonical), nullable(studyType), at.UTC(),
	); err != nil {
		return "", fmt.Errorf("upsert survey: %w", err)
	}
	return key, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

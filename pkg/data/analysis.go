package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	insertAnalysisSQL = `INSERT INTO analysis
		(id, content, fingerprint, url, verdict, label, fake_score, is_fake, reasons, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectAnalysisSQL = `SELECT id, content, fingerprint, url, verdict, label,
		fake_score, is_fake, reasons, created_at
		FROM analysis
		WHERE id = ?
	`

	selectAnalysesSQL = `SELECT id, content, fingerprint, url, verdict, label,
		fake_score, is_fake, reasons, created_at
		FROM analysis
		ORDER BY created_at DESC
		LIMIT ?
	`

	selectVerdictDistributionSQL = `SELECT verdict, COUNT(*)
		FROM analysis
		GROUP BY verdict
		ORDER BY COUNT(*) DESC
	`
)

// content type values for analysis records.
const (
	ContentText  = "text"
	ContentImage = "image"
)

// AnalysisRecord is one row of analysis history.
type AnalysisRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Content     string    `json:"content" yaml:"content"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Verdict     string    `json:"verdict" yaml:"verdict"`
	Label       string    `json:"label" yaml:"label"`
	FakeScore   float64   `json:"fake_score" yaml:"fakeScore"`
	IsFake      bool      `json:"is_fake" yaml:"isFake"`
	Reasons     []string  `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"createdAt"`
}

// SaveAnalysis inserts the record, assigning a UUID and timestamp when
// missing, and returns the record ID.
func SaveAnalysis(ctx context.Context, db *sql.DB, rec *AnalysisRecord) (string, error) {
	if db == nil {
		return "", errors.New("database not initialized")
	}
	if rec == nil {
		return "", errors.New("analysis record is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize reasons")
	}

	if _, err := db.ExecContext(ctx, insertAnalysisSQL,
		rec.ID, rec.Content, rec.Fingerprint, rec.URL, rec.Verdict, rec.Label,
		rec.FakeScore, rec.IsFake, string(reasons), rec.CreatedAt,
	); err != nil {
		return "", errors.Wrap(err, "failed to insert analysis record")
	}
	return rec.ID, nil
}

// GetAnalysis returns the record with the given ID, nil when not found.
func GetAnalysis(ctx context.Context, db *sql.DB, id string) (*AnalysisRecord, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}

	row := db.QueryRowContext(ctx, selectAnalysisSQL, id)
	rec, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query analysis record: %s", id)
	}
	return rec, nil
}

// ListAnalyses returns the most recent records, newest first.
func ListAnalyses(ctx context.Context, db *sql.DB, limit int) ([]*AnalysisRecord, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, selectAnalysesSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query analysis records")
	}
	defer rows.Close()

	var out []*AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan analysis row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read analysis rows")
	}
	return out, nil
}

// VerdictDistribution returns record counts per verdict.
func VerdictDistribution(ctx context.Context, db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := db.QueryContext(ctx, selectVerdictDistributionSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query verdict distribution")
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var verdict string
		var count int64
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan verdict row")
		}
		out[verdict] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read verdict rows")
	}
	return out, nil
}

func scanAnalysis(scan func(...any) error) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var url sql.NullString
	var reasons sql.NullString

	if err := scan(&rec.ID, &rec.Content, &rec.Fingerprint, &url, &rec.Verdict,
		&rec.Label, &rec.FakeScore, &rec.IsFake, &reasons, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.URL = url.String
	if reasons.Valid && reasons.String != "" && reasons.String != "null" {
		if err := json.Unmarshal([]byte(reasons.String), &rec.Reasons); err != nil {
			return nil, errors.Wrap(err, "failed to parse reasons")
		}
	}
	return &rec, nil
}

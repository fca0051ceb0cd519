package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	upsertDomainSQL = `INSERT INTO source_domain (domain, credibility, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			credibility = excluded.credibility,
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	selectDomainsSQL = `SELECT domain, credibility, status, updated_at
		FROM source_domain
		ORDER BY credibility DESC, domain
	`

	deleteDomainSQL = `DELETE FROM source_domain WHERE domain = ?`
)

// domain status values mirroring the source verifier's.
const (
	DomainTrusted   = "TRUSTED"
	DomainKnownFake = "KNOWN_FAKE"
)

// DomainRecord is one reviewed source-domain override.
type DomainRecord struct {
	Domain      string    `json:"domain" yaml:"domain"`
	Credibility int       `json:"credibility" yaml:"credibility"`
	Status      string    `json:"status" yaml:"status"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updatedAt"`
}

// UpsertDomain inserts or updates a domain override.
func UpsertDomain(ctx context.Context, db *sql.DB, rec *DomainRecord) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	if rec == nil || rec.Domain == "" {
		return errors.New("domain is required")
	}
	if rec.Status != DomainTrusted && rec.Status != DomainKnownFake {
		return errors.Errorf("invalid domain status: %s", rec.Status)
	}
	if rec.Status == DomainTrusted && (rec.Credibility < 1 || rec.Credibility > 10) {
		return errors.Errorf("trusted domain credibility must be in 1..10, got %d", rec.Credibility)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	if _, err := db.ExecContext(ctx, upsertDomainSQL,
		rec.Domain, rec.Credibility, rec.Status, rec.UpdatedAt); err != nil {
		return errors.Wrapf(err, "failed to upsert domain: %s", rec.Domain)
	}
	return nil
}

// ListDomains returns all overrides, most credible first.
func ListDomains(ctx context.Context, db *sql.DB) ([]*DomainRecord, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := db.QueryContext(ctx, selectDomainsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query domains")
	}
	defer rows.Close()

	var out []*DomainRecord
	for rows.Next() {
		var rec DomainRecord
		if err := rows.Scan(&rec.Domain, &rec.Credibility, &rec.Status, &rec.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan domain row")
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read domain rows")
	}
	return out, nil
}

// DeleteDomain removes an override.
func DeleteDomain(ctx context.Context, db *sql.DB, domain string) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	if domain == "" {
		return errors.New("domain is required")
	}
	if _, err := db.ExecContext(ctx, deleteDomainSQL, domain); err != nil {
		return errors.Wrapf(err, "failed to delete domain: %s", domain)
	}
	return nil
}

// DomainOverrides splits the stored overrides into the trusted table
// and blocklist the source verifier consumes.
func DomainOverrides(ctx context.Context, db *sql.DB) (trusted map[string]int, fake []string, err error) {
	records, err := ListDomains(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	trusted = make(map[string]int)
	for _, rec := range records {
		switch rec.Status {
		case DomainTrusted:
			trusted[rec.Domain] = rec.Credibility
		case DomainKnownFake:
			fake = append(fake, rec.Domain)
		}
	}
	return trusted, fake, nil
}

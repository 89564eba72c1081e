package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbecker/postal/internal/validation"
)

// RecordStore persists validation records in PostgreSQL, keyed by street
// address. Writes are upserts: the same key written twice keeps only the
// most recent outcome (last-write-wins, no read-before-write).
type RecordStore struct {
	db *pgxpool.Pool
}

// Compile-time check to ensure RecordStore implements validation.Recorder.
var _ validation.Recorder = (*RecordStore)(nil)

// NewRecordStore creates a new RecordStore instance.
func NewRecordStore(db *pgxpool.Pool) *RecordStore {
	return &RecordStore{db: db}
}

// StoredRecord is the persisted pairing of an input address and its
// validation outcome.
type StoredRecord struct {
	StreetAddress    string          `json:"streetAddress"`
	City             string          `json:"city"`
	State            string          `json:"state"`
	ZIPCode          string          `json:"ZIPCode"`
	ValidationResult json.RawMessage `json:"validationResult"`
	CreatedAt        time.Time       `json:"-"`
	UpdatedAt        time.Time       `json:"-"`
}

// Record writes one validation record. It is invoked as a side effect
// after the response to the caller has been decided; callers log a write
// fault and continue.
func (s *RecordStore) Record(ctx context.Context, addr validation.Address, outcome validation.Outcome) error {
	result, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode validation result: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO validation_records (street_address, city, state, zip_code, validation_result, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (street_address) DO UPDATE SET
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			validation_result = EXCLUDED.validation_result,
			updated_at = now()`,
		addr.StreetAddress, addr.City, addr.State, addr.ZIPCode, result,
	)
	if err != nil {
		return fmt.Errorf("write validation record: %w", err)
	}
	return nil
}

// Get returns the record stored under a street address key.
func (s *RecordStore) Get(ctx context.Context, streetAddress string) (*StoredRecord, error) {
	var rec StoredRecord
	err := s.db.QueryRow(ctx, `
		SELECT street_address, city, state, zip_code, validation_result, created_at, updated_at
		FROM validation_records
		WHERE street_address = $1`,
		streetAddress,
	).Scan(&rec.StreetAddress, &rec.City, &rec.State, &rec.ZIPCode, &rec.ValidationResult, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("read validation record: %w", err)
	}
	return &rec, nil
}

package batch_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/postal/internal/batch"
	"github.com/mbecker/postal/internal/storage"
	"github.com/mbecker/postal/internal/validation"
)

// memStore serves objects from memory, keyed bucket/key.
type memStore struct {
	objects map[string]string
}

func (s *memStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	content, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound(bucket, key)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// echoValidator returns a validated payload carrying the street address,
// so tests can check ordering.
func echoValidator() *validation.MockValidator {
	return &validation.MockValidator{
		ValidateFunc: func(ctx context.Context, addr validation.Address) validation.Outcome {
			return validation.Validated(map[string]any{"streetAddress": addr.StreetAddress})
		},
	}
}

func TestDriver_Process_PreservesInputOrder(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"addresses/batch.csv": "street,city,state,zip\nA,B,C,1\nD,E,F,2\n",
	}}
	v := echoValidator()
	rec := &validation.MockRecorder{}
	driver := batch.NewDriver(v, rec, store, nil, nil)

	outcomes, err := driver.Process(context.Background(), "addresses", "batch.csv")

	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "A", outcomes[0].Payload["streetAddress"])
	assert.Equal(t, "D", outcomes[1].Payload["streetAddress"])
	assert.Equal(t, 2, v.Calls())
}

func TestDriver_Process_HeaderNotValidated(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"addresses/batch.csv": "this is not a real header\n1 Main St,San Francisco,CA,94105\n",
	}}
	v := echoValidator()
	rec := &validation.MockRecorder{}
	driver := batch.NewDriver(v, rec, store, nil, nil)

	outcomes, err := driver.Process(context.Background(), "addresses", "batch.csv")

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "1 Main St", outcomes[0].Payload["streetAddress"])
}

func TestDriver_Process_MalformedLineCapturedInSlot(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"addresses/batch.csv": "street,city,state,zip\nA,B,C,1\ntoo,few,fields\nD,E,F,2\n",
	}}
	v := echoValidator()
	rec := &validation.MockRecorder{}
	driver := batch.NewDriver(v, rec, store, nil, nil)

	outcomes, err := driver.Process(context.Background(), "addresses", "batch.csv")

	require.NoError(t, err, "a malformed line must not abort the batch")
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Valid)
	assert.False(t, outcomes[1].Valid)
	assert.Contains(t, outcomes[1].Reason, "expected 4 fields, got 3")
	assert.True(t, outcomes[2].Valid)
	assert.Equal(t, 2, v.Calls(), "malformed lines are not validated")
}

func TestDriver_Process_RecordsEveryOutcome(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"addresses/batch.csv": "street,city,state,zip\n1 Main St,San Francisco,CA,94105\n2 Oak Ave,Portland,OR,97201\n",
	}}
	v := &validation.MockValidator{
		ValidateFunc: func(ctx context.Context, addr validation.Address) validation.Outcome {
			if addr.StreetAddress == "2 Oak Ave" {
				return validation.Failed(validation.ReasonBothFailed)
			}
			return validation.Validated(map[string]any{"streetAddress": addr.StreetAddress})
		},
	}
	rec := &validation.MockRecorder{}
	driver := batch.NewDriver(v, rec, store, nil, nil)

	_, err := driver.Process(context.Background(), "addresses", "batch.csv")
	require.NoError(t, err)

	// Both success and failure outcomes are persisted.
	ok, found := rec.Last("1 Main St")
	require.True(t, found)
	assert.True(t, ok.Valid)

	failed, found := rec.Last("2 Oak Ave")
	require.True(t, found)
	assert.False(t, failed.Valid)
}

func TestDriver_Process_StoreWriteFaultDoesNotFailLine(t *testing.T) {
	store := &memStore{objects: map[string]string{
		"addresses/batch.csv": "street,city,state,zip\nA,B,C,1\n",
	}}
	v := echoValidator()
	rec := &validation.MockRecorder{
		RecordFunc: func(ctx context.Context, addr validation.Address, outcome validation.Outcome) error {
			return fmt.Errorf("connection reset")
		},
	}
	driver := batch.NewDriver(v, rec, store, nil, nil)

	outcomes, err := driver.Process(context.Background(), "addresses", "batch.csv")

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Valid, "a store fault never masks the validation result")
}

func TestDriver_Process_MissingObject(t *testing.T) {
	store := &memStore{objects: map[string]string{}}
	driver := batch.NewDriver(echoValidator(), &validation.MockRecorder{}, store, nil, nil)

	_, err := driver.Process(context.Background(), "addresses", "missing.csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")
}

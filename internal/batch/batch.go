package batch

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mbecker/postal/internal/storage"
	"github.com/mbecker/postal/internal/telemetry"
	"github.com/mbecker/postal/internal/validation"
)

// fieldsPerLine is the fixed shape of a bulk dataset line:
// street,city,state,zip. No quoting or escaping is supported, so
// embedded commas cannot be represented.
const fieldsPerLine = 4

// Driver processes a line-oriented address dataset from object storage,
// validating each record through the configured validator and persisting
// every outcome. Records are processed strictly sequentially and output
// order matches input order.
type Driver struct {
	validator validation.Validator
	recorder  validation.Recorder
	store     storage.ObjectStore
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// NewDriver creates a batch driver.
func NewDriver(v validation.Validator, r validation.Recorder, store storage.ObjectStore, logger *slog.Logger, metrics *telemetry.Metrics) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		validator: v,
		recorder:  r,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// Process validates every record in the object at bucket/key. The first
// line is discarded as a header. A line with the wrong field count
// becomes a failed outcome in its slot rather than aborting the batch,
// so partial results are always returned in input order. A result-store
// write fault is logged and does not fail the line.
func (d *Driver) Process(ctx context.Context, bucket, key string) ([]validation.Outcome, error) {
	obj, err := d.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch batch source: %w", err)
	}
	defer obj.Close()

	logger := d.logger.With("bucket", bucket, "key", key)
	logger.Info("processing batch")

	var outcomes []validation.Outcome
	sc := bufio.NewScanner(obj)
	lineNo := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		lineNo++
		line := strings.TrimSpace(sc.Text())
		if lineNo == 1 {
			// Header line, not validated as a real header.
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != fieldsPerLine {
			logger.Warn("malformed batch line", "line", lineNo, "fields", len(fields))
			d.metrics.BatchLine("malformed")
			outcomes = append(outcomes, validation.Failed(
				fmt.Sprintf("line %d: expected %d fields, got %d", lineNo, fieldsPerLine, len(fields)),
			))
			continue
		}

		addr := validation.Address{
			StreetAddress: strings.TrimSpace(fields[0]),
			City:          strings.TrimSpace(fields[1]),
			State:         strings.TrimSpace(fields[2]),
			ZIPCode:       strings.TrimSpace(fields[3]),
		}

		outcome := d.validator.Validate(ctx, addr)
		if err := d.recorder.Record(ctx, addr, outcome); err != nil {
			logger.Error("failed to record validation result", "street", addr.StreetAddress, "error", err)
			d.metrics.RecordWrite("error")
		} else {
			d.metrics.RecordWrite("ok")
		}

		if outcome.Valid {
			d.metrics.BatchLine("ok")
		} else {
			d.metrics.BatchLine("failed")
		}
		outcomes = append(outcomes, outcome)
	}
	if err := sc.Err(); err != nil {
		return outcomes, fmt.Errorf("read batch source: %w", err)
	}

	logger.Info("batch processed", "lines", len(outcomes))
	return outcomes, nil
}

package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator defines the interface for address validation.
// Implementations call external standardization providers (USPS, Smarty)
// or compose them, as FailoverValidator does. A failed validation is a
// normal Outcome, never an error: adapters absorb every provider fault.
type Validator interface {
	Validate(ctx context.Context, addr Address) Outcome
}

// Recorder persists the pairing of an input address and its validation
// outcome. Writes are keyed by street address with last-write-wins
// semantics; callers treat a write fault as a side-effect failure only.
type Recorder interface {
	Record(ctx context.Context, addr Address, outcome Outcome) error
}

// Address represents a postal address submitted for validation.
// Immutable once constructed; City is the only optional field.
type Address struct {
	StreetAddress string `json:"streetAddress" validate:"required"`
	City          string `json:"city,omitempty"`
	State         string `json:"state" validate:"required"`
	ZIPCode       string `json:"ZIPCode" validate:"required"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// Report json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the required fields are present and non-empty.
// Adapters call this before issuing any network request.
func (a Address) Validate() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("missing required fields: %s", strings.Join(fields, ", "))
	}
	return err
}

// Complete reports whether the address carries all required fields.
func (a Address) Complete() bool {
	return a.Validate() == nil
}

// Outcome is the tagged result of one validation attempt: either a
// standardized-address payload from exactly one provider, or a failure
// reason. Never both.
type Outcome struct {
	Valid   bool
	Payload map[string]any
	Reason  string
}

// Validated wraps a provider's standardized-address payload.
func Validated(payload map[string]any) Outcome {
	return Outcome{Valid: true, Payload: payload}
}

// Failed wraps a failure reason.
func Failed(reason string) Outcome {
	return Outcome{Reason: reason}
}

// MarshalJSON serializes a validated outcome as the provider payload and
// a failed outcome as {"error": reason}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Valid {
		return json.Marshal(o.Payload)
	}
	return json.Marshal(map[string]string{"error": o.Reason})
}

package features

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

var ErrInvalidInput = errors.New("invalid input")

// Gender labels and their encoding. The model was fit with male=0, female=1;
// swapping these produces wrong predictions without any error.
const (
	GenderMale   = "male"
	GenderFemale = "female"

	GenderMaleCode   = 0.0
	GenderFemaleCode = 1.0
)

// RawInputs holds workout fields as received from a client. Numeric fields
// accept numbers or numeric strings.
type RawInputs struct {
	Gender    string
	Age       any
	Height    any
	Weight    any
	Duration  any
	HeartRate any
	BodyTemp  any
}

type Normalizer struct {
	columns []string
}

// NewNormalizer creates a normalizer producing vectors in the given column
// order, falling back to DefaultColumns when columns is empty.
func NewNormalizer(columns []string) *Normalizer {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	return &Normalizer{
		columns: append([]string(nil), columns...),
	}
}

func (n *Normalizer) Normalize(raw RawInputs) (Vector, error) {
	values, err := Parse(raw)
	if err != nil {
		return Vector{}, err
	}
	return n.Vector(values), nil
}

// Vector orders already parsed values by the normalizer's columns.
func (n *Normalizer) Vector(values map[string]float64) Vector {
	return NewVector(n.columns, values)
}

// Parse validates raw inputs and returns them keyed by canonical column name.
func Parse(raw RawInputs) (map[string]float64, error) {
	gender, err := EncodeGender(raw.Gender)
	if err != nil {
		return nil, err
	}

	values := map[string]float64{ColGender: gender}
	numeric := []struct {
		column string
		field  string
		value  any
	}{
		{ColAge, "age", raw.Age},
		{ColHeight, "height", raw.Height},
		{ColWeight, "weight", raw.Weight},
		{ColDuration, "duration", raw.Duration},
		{ColHeartRate, "heart_rate", raw.HeartRate},
		{ColBodyTemp, "body_temp", raw.BodyTemp},
	}
	for _, f := range numeric {
		v, err := ParseNumber(f.field, f.value)
		if err != nil {
			return nil, err
		}
		values[f.column] = v
	}

	return values, nil
}

func EncodeGender(label string) (float64, error) {
	switch label {
	case GenderMale:
		return GenderMaleCode, nil
	case GenderFemale:
		return GenderFemaleCode, nil
	default:
		return 0, fmt.Errorf("%w: gender must be %q or %q, got %q", ErrInvalidInput, GenderMale, GenderFemale, label)
	}
}

// ParseNumber coerces a raw request value into a finite float.
func ParseNumber(field string, value any) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
		if value == "" {
			return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
	}
	if _, ok := value.(bool); ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, field)
	}

	v, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number: %v", ErrInvalidInput, field, value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidInput, field)
	}
	return v, nil
}

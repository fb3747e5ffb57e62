package features

import "slices"

// canonical column names, as the regression model was trained on them
const (
	ColGender    = "Gender"
	ColAge       = "Age"
	ColHeight    = "Height"
	ColWeight    = "Weight"
	ColDuration  = "Duration"
	ColHeartRate = "Heart_Rate"
	ColBodyTemp  = "Body_Temp"
)

// DefaultColumns returns the column order used when the model metadata
// does not provide one.
func DefaultColumns() []string {
	return []string{
		ColGender,
		ColAge,
		ColHeight,
		ColWeight,
		ColDuration,
		ColHeartRate,
		ColBodyTemp,
	}
}

// Vector is an immutable, ordered set of named feature values.
// The zero value is an empty vector.
type Vector struct {
	columns []string
	values  []float64
}

// NewVector builds a vector with the given column order. Columns missing from
// values are set to 0, values for unknown columns are ignored.
func NewVector(columns []string, values map[string]float64) Vector {
	v := Vector{
		columns: slices.Clone(columns),
		values:  make([]float64, len(columns)),
	}
	for i, col := range columns {
		v.values[i] = values[col]
	}
	return v
}

func (v Vector) Len() int {
	return len(v.columns)
}

func (v Vector) Columns() []string {
	return slices.Clone(v.columns)
}

func (v Vector) Values() []float64 {
	return slices.Clone(v.values)
}

func (v Vector) Get(column string) (float64, bool) {
	i := slices.Index(v.columns, column)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// WithValue returns a copy of the vector with column set to value.
// The second return value is false if the vector has no such column.
func (v Vector) WithValue(column string, value float64) (Vector, bool) {
	i := slices.Index(v.columns, column)
	if i < 0 {
		return v, false
	}
	nv := Vector{
		columns: v.columns, // never mutated, safe to share
		values:  slices.Clone(v.values),
	}
	nv.values[i] = value
	return nv, true
}

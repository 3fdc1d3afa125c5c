package placement

import "errors"

// A Column holds the values of an optional dataset. An absent column answers
// every lookup with the zero value.
type Column[T any] struct {
	values  []T
	present bool
}

// Present creates a column holding the values.
func Present[T any](values []T) Column[T] {
	return Column[T]{values: values, present: true}
}

// Absent creates a column for a dataset that does not exist.
func Absent[T any]() Column[T] {
	return Column[T]{}
}

// Optional fetches a dataset, turning ErrDatasetNotFound into an absent
// column. Other errors are returned.
func Optional[T any](fetch func() ([]T, error)) (Column[T], error) {
	values, err := fetch()
	if errors.Is(err, ErrDatasetNotFound) {
		return Absent[T](), nil
	}

	if err != nil {
		return Absent[T](), err
	}

	return Present(values), nil
}

// IsPresent reports whether the dataset exists.
func (c Column[T]) IsPresent() bool {
	return c.present
}

// At returns the i-th value and whether it exists.
func (c Column[T]) At(i int) (T, bool) {
	var zero T
	if !c.present || i < 0 || i >= len(c.values) {
		return zero, false
	}

	return c.values[i], true
}

// Len returns the number of values, 0 if the column is absent.
func (c Column[T]) Len() int {
	return len(c.values)
}

package schema

import (
	"errors"
	"strconv"
)

// ErrInvalidQuery reports a read filter value that is empty, not an
// integer, or not positive.
var ErrInvalidQuery = errors.New("invalid query value")

// PositiveInt parses a single id filter value.
func PositiveInt(value string) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, ErrInvalidQuery
	}
	return parsed, nil
}

// PositiveInts parses a repeated id filter. Every value must parse to a
// positive integer; an empty list is itself invalid.
func PositiveInts(values []string) ([]int, error) {
	if len(values) == 0 {
		return nil, ErrInvalidQuery
	}
	parsed := make([]int, 0, len(values))
	for _, value := range values {
		id, err := PositiveInt(value)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, id)
	}
	return parsed, nil
}

package repository

import "encoding/json"

// jsonCol serializes a slice for storage in a JSON column.  Nil and
// empty slices are stored as NULL so the column stays queryable with
// IS NULL.
func jsonCol[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// scanJSON decodes a JSON column into dst.  NULL columns leave dst
// untouched.
func scanJSON[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

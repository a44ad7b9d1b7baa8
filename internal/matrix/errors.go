package matrix

import "errors"

var (
	// ErrInvalidDimensions is returned for a matrix without rows or columns,
	// or one too large for 32-bit indices.
	ErrInvalidDimensions = errors.New("matrix: invalid dimensions")
	// ErrRowOutOfRange is returned for a row index beyond the matrix.
	ErrRowOutOfRange = errors.New("matrix: row out of range")
	// ErrColumnOutOfRange is returned for a column index beyond the matrix.
	ErrColumnOutOfRange = errors.New("matrix: column out of range")
	// ErrInconsistentRow is returned when row bookkeeping does not match
	// the stored rows.
	ErrInconsistentRow = errors.New("matrix: inconsistent row")
	// ErrExponentOverflow is returned when combining two rows produces an
	// exponent outside the int32 range.
	ErrExponentOverflow = errors.New("matrix: exponent overflow")
	// ErrZeroExponent is returned when a row combined on a column does not
	// carry a nonzero exponent on it.
	ErrZeroExponent = errors.New("matrix: zero exponent on merged column")
)

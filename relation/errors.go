package relation

import "errors"

var (
	// ErrMalformedHeader is returned when the first line is not "# nrows ncols".
	ErrMalformedHeader = errors.New("relation: malformed header")

	// ErrMalformedRelation is returned for a relation line that cannot be parsed.
	ErrMalformedRelation = errors.New("relation: malformed relation")
)

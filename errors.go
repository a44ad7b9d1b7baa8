package factormethods

import (
	"errors"

	"github.com/TyrionQu/FactorMethods/blobstore"
	"github.com/TyrionQu/FactorMethods/codec"
	"github.com/TyrionQu/FactorMethods/history"
	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/engine"
	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/internal/resource"
	"github.com/TyrionQu/FactorMethods/relation"
)

var (
	// ErrInvalidOption is returned for an option value out of range.
	ErrInvalidOption = errors.New("factormethods: invalid option")

	// ErrRowTooLarge is returned when a row does not fit in an arena page.
	// Increase the page size with WithPageSize.
	ErrRowTooLarge = arena.ErrRowTooLarge

	// ErrMemoryLimitExceeded is returned when the page budget set with
	// WithMemoryLimit is exhausted.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrExponentOverflow is returned when a combined exponent leaves the
	// int32 range.
	ErrExponentOverflow = matrix.ErrExponentOverflow

	// ErrZeroExponent is returned when a merged row carries no exponent on
	// the merged column.
	ErrZeroExponent = matrix.ErrZeroExponent

	// ErrInvalidDimensions is returned when the header does not match the
	// relations read.
	ErrInvalidDimensions = matrix.ErrInvalidDimensions

	// ErrRowOutOfRange is returned for more relations than the header declares.
	ErrRowOutOfRange = matrix.ErrRowOutOfRange

	// ErrColumnOutOfRange is returned for an ideal beyond the declared columns.
	ErrColumnOutOfRange = matrix.ErrColumnOutOfRange

	// ErrInconsistentRow is returned when row bookkeeping is corrupted.
	ErrInconsistentRow = matrix.ErrInconsistentRow

	// ErrWidthExceeded is returned for a merge wider than supported.
	ErrWidthExceeded = engine.ErrWidthExceeded

	// ErrUnknownCodec is returned for an unknown compression name.
	ErrUnknownCodec = codec.ErrUnknownCodec

	// ErrUnsupportedScheme is returned for a location URL with no store.
	ErrUnsupportedScheme = blobstore.ErrUnsupportedScheme

	// ErrNotFound is returned when the input does not exist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrMalformedHeader is returned when the input lacks the "# nrows ncols" line.
	ErrMalformedHeader = relation.ErrMalformedHeader

	// ErrMalformedRelation is returned for an unparsable relation line.
	ErrMalformedRelation = relation.ErrMalformedRelation

	// ErrChecksumMismatch is returned by VerifyHistory for a damaged history.
	ErrChecksumMismatch = history.ErrChecksumMismatch
)

package history

import "errors"

var (
	// ErrMalformedLine is returned by Scanner for lines that are not a history record.
	ErrMalformedLine = errors.New("history: malformed line")

	// ErrChecksumMismatch is returned by Verify when the trailer does not match the content.
	ErrChecksumMismatch = errors.New("history: checksum mismatch")

	// ErrMissingChecksum is returned by Verify when the log has no trailer.
	ErrMissingChecksum = errors.New("history: missing checksum trailer")

	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("history: writer closed")
)

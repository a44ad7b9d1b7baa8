// Package history writes and reads merge histories.
//
// A history is a text log with one line per executed merge step:
//
//	i          row i was the only row containing the merged column and is removed
//	-(f+1) t   row f is added to row t and kept
//	f t        row f is added to row t and removed afterwards
//
// Lines starting with # are comments. In the exponent variant every line
// ends with " #j", j being the input index of the eliminated column.
//
// A Writer keeps one buffer per merge worker and appends them to the sink
// in worker order between passes, so the lines of one merge are never
// interleaved with another's. Close appends a checksum trailer that Verify
// checks.
package history

package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
	}{
		{"c60.purged.gz", Location{Scheme: SchemeFile, Root: ".", Name: "c60.purged.gz"}},
		{"/data/c60/c60.history", Location{Scheme: SchemeFile, Root: "/data/c60/", Name: "c60.history"}},
		{"file:///data/c60/c60.history.zst", Location{Scheme: SchemeFile, Root: "/data/c60/", Name: "c60.history.zst"}},
		{"mem://history", Location{Scheme: SchemeMemory, Name: "history"}},
		{"minio://factor/c120/rels.purged.lz4", Location{Scheme: SchemeMinio, Root: "factor", Name: "c120/rels.purged.lz4"}},
		{"s3://factor/c120/history.gz", Location{Scheme: SchemeS3, Root: "factor", Name: "c120/history.gz"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLocation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_Errors(t *testing.T) {
	_, err := ParseLocation("")
	assert.Error(t, err)

	_, err = ParseLocation("gs://bucket/key")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ParseLocation("s3://bucket")
	assert.Error(t, err)

	_, err = ParseLocation("mem://")
	assert.Error(t, err)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "s3://factor/c120/history.gz", Location{Scheme: SchemeS3, Root: "factor", Name: "c120/history.gz"}.String())
	assert.Equal(t, "mem://history", Location{Scheme: SchemeMemory, Name: "history"}.String())
	assert.Equal(t, "data/h", Location{Scheme: SchemeFile, Root: "data/", Name: "h"}.String())
}

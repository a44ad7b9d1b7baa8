package blobstore

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Scheme names the kind of store a location lives in.
type Scheme string

const (
	// SchemeFile is the local filesystem.
	SchemeFile Scheme = "file"
	// SchemeMemory is an in-memory store.
	SchemeMemory Scheme = "mem"
	// SchemeMinio is a MinIO or other S3-compatible endpoint.
	SchemeMinio Scheme = "minio"
	// SchemeS3 is Amazon S3.
	SchemeS3 Scheme = "s3"
)

// Location is a parsed blob address. Root is the directory or bucket the
// store is opened on, Name the blob inside it.
type Location struct {
	Scheme Scheme
	Root   string
	Name   string
}

// String formats the location as a URL.
func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return filepath.Join(l.Root, l.Name)
	}
	return string(l.Scheme) + "://" + path.Join(l.Root, l.Name)
}

// ParseLocation parses a blob URL. A string without a scheme is a local
// path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("blobstore: empty location")
	}
	if !strings.Contains(raw, "://") {
		return fileLocation(raw), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("blobstore: parse %q: %w", raw, err)
	}

	switch s := Scheme(u.Scheme); s {
	case SchemeFile:
		return fileLocation(u.Path), nil
	case SchemeMemory:
		name := strings.TrimPrefix(path.Join(u.Host, u.Path), "/")
		if name == "" {
			return Location{}, fmt.Errorf("blobstore: %q names no blob", raw)
		}
		return Location{Scheme: s, Name: name}, nil
	case SchemeMinio, SchemeS3:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("blobstore: %q needs a bucket and a key", raw)
		}
		return Location{Scheme: s, Root: u.Host, Name: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func fileLocation(p string) Location {
	dir, name := filepath.Split(filepath.Clean(p))
	if dir == "" {
		dir = "."
	}
	return Location{Scheme: SchemeFile, Root: dir, Name: name}
}

// Package assets embeds the model the viewer opens when none is configured.
package assets

import (
	"embed"
	"io"
	"io/fs"
	"net/url"
	"strings"
)

// Scheme prefixes references to embedded files, as in "builtin:house.obj".
const Scheme = "builtin"

// Default model references.
const (
	HouseOBJ = Scheme + ":house.obj"
	HouseMTL = Scheme + ":house.mtl"
)

//go:embed house.obj house.mtl
var files embed.FS

// Name returns the embedded file name of ref and whether ref uses Scheme.
func Name(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != Scheme {
		return "", false
	}
	name := u.Opaque
	if name == "" {
		name = u.Path
	}
	return strings.TrimPrefix(name, "/"), true
}

// Open opens an embedded file by reference and returns its size.
func Open(ref string) (io.ReadCloser, int64, error) {
	name, ok := Name(ref)
	if !ok {
		return nil, 0, &fs.PathError{Op: "open", Path: ref, Err: fs.ErrInvalid}
	}
	f, err := files.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

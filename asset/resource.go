package asset

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrUnsupportedScheme = errors.New("resource: unsupported scheme")

// A Resource wraps a local file or a file fetched over http(s).
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Get a canonical location for the resource: the absolute file path for
// local resources or the full URL for remote ones.
func (r *Resource) Location() string {
	if r.IsRemote() {
		return r.url.String()
	}
	if abs, err := filepath.Abs(r.url.Path); err == nil {
		return abs
	}
	return r.url.Path
}

// Get the lower-case file extension of the resource, including the dot.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Open a resource. Relative paths without a scheme are resolved against the
// directory of relTo (if specified) so that files can include other files
// next to them, both on disk and on a remote server.
//
// The caller must close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	loc, err := url.Parse(strings.ReplaceAll(pathToResource, `\`, `/`))
	if err != nil {
		return nil, err
	}

	if loc.Scheme == "" && relTo != nil {
		if loc, err = resolve(loc.Path, relTo); err != nil {
			return nil, err
		}
	}

	var reader io.ReadCloser
	switch loc.Scheme {
	case "":
		if reader, err = os.Open(filepath.Clean(loc.Path)); err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(loc.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", loc.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", loc.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnsupportedScheme, loc.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        loc,
	}, nil
}

// Build the location of a path relative to another resource.
func resolve(relPath string, relTo *Resource) (*url.URL, error) {
	loc := *relTo.url
	if loc.Scheme != "" {
		loc.Path = path.Join(path.Dir(loc.Path), relPath)
		return &loc, nil
	}

	prefix, err := filepath.Abs(relTo.url.Path)
	if err != nil {
		return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
	}
	loc.Path = filepath.Join(filepath.Dir(prefix), relPath)
	return &loc, nil
}

// Create a resource from a reader. The name is used for error reporting and
// for selecting a reader based on the file extension.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	loc, err := url.Parse(name)
	if err != nil {
		loc = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        loc,
	}
}

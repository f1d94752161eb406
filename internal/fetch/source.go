package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNetwork wraps transport-level failures (DNS, refused connections, timeouts).
	ErrNetwork = errors.New("network error")
	// ErrHTTP is matched by every *StatusError.
	ErrHTTP = errors.New("http error")
	// ErrTooLarge is returned for documents over the size limit.
	ErrTooLarge = errors.New("document too large")
)

// maxDocumentSize caps the size of a document.
const maxDocumentSize = 8 << 20

// StatusError reports a non-success response for a document path.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to load %s: status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrHTTP) match any status error.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTP
}

// IsNotFound reports whether err is a 404 for the requested document.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Source loads the raw bytes of a document addressed by a page-relative path
// such as "./data/daily_brief.json".
type Source interface {
	Fetch(ctx context.Context, p string) ([]byte, error)
}

// HTTPSource fetches documents relative to a base URL, the way the page's
// own scripts would against the static host.
type HTTPSource struct {
	base    *url.URL
	client  *http.Client
	maxSize int64
}

// NewHTTPSource creates an HTTPSource rooted at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &HTTPSource{
		base: u,
		client: &http.Client{
			Timeout: timeout,
		},
		maxSize: maxDocumentSize,
	}, nil
}

// Fetch issues a GET for p resolved against the base URL.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	ref, err := url.Parse(p)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", p, err)
	}
	target := s.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dailybrief")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Path: p, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, p, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, p, s.maxSize)
	}
	return data, nil
}

// DirSource reads documents from a local directory laid out like the static
// host, e.g. {root}/data/daily_brief.json.
type DirSource struct {
	root    string
	maxSize int64
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir, maxSize: maxDocumentSize}
}

// Root returns the directory documents are read from.
func (s *DirSource) Root() string { return s.root }

// Fetch reads p relative to the root. Paths escaping the root are rejected
// with a 403; missing files surface as a 404 like they would over HTTP.
func (s *DirSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, ok := s.resolve(p)
	if !ok {
		return nil, &StatusError{Path: p, StatusCode: http.StatusForbidden}
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StatusError{Path: p, StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if info.Size() > s.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, p, s.maxSize)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

func (s *DirSource) resolve(p string) (string, bool) {
	rel := strings.TrimPrefix(p, "./")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", false
		}
	}
	clean := path.Clean("/" + rel)
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), true
}

// New returns an HTTPSource when location is an http(s) URL and a DirSource
// otherwise.
func New(location string, timeout time.Duration) (Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		src, err := NewHTTPSource(location, timeout)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("accessing source %s: %w", location, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", location)
	}
	return NewDirSource(location), nil
}

package pdfraster

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pdfraster/internal/fileutil"
)

// pdf.js build served by the default mirrors.
const (
	PDFJSVersion = "3.11.174"

	scriptFile = "pdf.min.js"
	workerFile = "pdf.worker.min.js"
)

// EnvPDFJSDir names a local pdf.js build directory tried before any mirror.
const EnvPDFJSDir = "PDFRASTER_PDFJS_DIR"

// EngineLocator points at a pdf.js build directory holding the engine
// library and its worker module. Immutable once constructed.
type EngineLocator struct {
	uri   string
	name  string
	local bool
}

// NewLocator builds a locator. Local locators accept an absolute path or a
// file:// URL; remote locators require an http(s) URL.
func NewLocator(name, uri string, local bool) (EngineLocator, error) {
	uri = strings.TrimRight(strings.TrimSpace(uri), "/")
	if uri == "" {
		return EngineLocator{}, fmt.Errorf("%w: empty URI", ErrInvalidLocator)
	}

	if local {
		path := fileutil.LocalPath(uri)
		if !filepath.IsAbs(path) {
			return EngineLocator{}, fmt.Errorf("%w: local path must be absolute: %q", ErrInvalidLocator, uri)
		}
		uri = "file://" + filepath.ToSlash(path)
	} else {
		u, err := url.Parse(uri)
		if err != nil {
			return EngineLocator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return EngineLocator{}, fmt.Errorf("%w: remote locator must be an http(s) URL: %q", ErrInvalidLocator, uri)
		}
	}

	if name == "" {
		name = deriveLocatorName(uri, local)
	}
	return EngineLocator{uri: uri, name: name, local: local}, nil
}

// MustLocator is like NewLocator but panics on error. Meant for static lists.
func MustLocator(name, uri string, local bool) EngineLocator {
	loc, err := NewLocator(name, uri, local)
	if err != nil {
		panic(err)
	}
	return loc
}

// deriveLocatorName picks "bundled" for local locators and the host otherwise.
func deriveLocatorName(uri string, local bool) string {
	if local {
		return "bundled"
	}
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		return u.Host
	}
	return uri
}

// URI returns the build directory URI.
func (l EngineLocator) URI() string { return l.uri }

// Name returns the short label used in strategy names and diagnostics.
func (l EngineLocator) Name() string { return l.name }

// IsLocal reports whether the locator is bundled with the process.
func (l EngineLocator) IsLocal() bool { return l.local }

// IsZero reports whether l is the zero locator.
func (l EngineLocator) IsZero() bool { return l.uri == "" }

// ScriptURL returns the engine library URL.
func (l EngineLocator) ScriptURL() string { return l.uri + "/" + scriptFile }

// WorkerURL returns the companion worker module URL.
func (l EngineLocator) WorkerURL() string { return l.uri + "/" + workerFile }

// String implements fmt.Stringer.
func (l EngineLocator) String() string {
	if l.local {
		return l.name + " (" + l.uri + ", local)"
	}
	return l.name + " (" + l.uri + ")"
}

// Equal reports whether two locators refer to the same location.
func (l EngineLocator) Equal(other EngineLocator) bool {
	return l.uri == other.uri && l.local == other.local
}

// DefaultLocators returns the built-in candidates: a bundled build when
// PDFRASTER_PDFJS_DIR is set, then public mirrors.
func DefaultLocators() []EngineLocator {
	var locs []EngineLocator

	if dir := os.Getenv(EnvPDFJSDir); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			if loc, err := NewLocator("bundled", abs, true); err == nil {
				locs = append(locs, loc)
			}
		}
	}

	return append(locs,
		MustLocator("jsdelivr", "https://cdn.jsdelivr.net/npm/pdfjs-dist@"+PDFJSVersion+"/build", false),
		MustLocator("cdnjs", "https://cdnjs.cloudflare.com/ajax/libs/pdf.js/"+PDFJSVersion, false),
		MustLocator("unpkg", "https://unpkg.com/pdfjs-dist@"+PDFJSVersion+"/build", false),
	)
}

// orderLocators puts local locators first, keeping relative order, and
// drops zero values and duplicates.
func orderLocators(locs []EngineLocator) []EngineLocator {
	ordered := make([]EngineLocator, 0, len(locs))
	seen := make(map[string]bool, len(locs))
	for _, pass := range []bool{true, false} {
		for _, l := range locs {
			if l.IsZero() || l.local != pass || seen[l.uri] {
				continue
			}
			seen[l.uri] = true
			ordered = append(ordered, l)
		}
	}
	return ordered
}

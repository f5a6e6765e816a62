package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-research/rigseq/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for documents whose format cannot be
// read or written.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatHCL:
		return "hcl"
	}
	return "unknown"
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	}
	return FormatUnknown
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	}
	return FormatUnknown, fmt.Errorf("%q: %w", name, ErrUnsupportedFormat)
}

// Loader reads and writes documents on a billy filesystem.
type Loader struct {
	FS billy.Filesystem

	// absPaths makes relative paths absolute before they reach FS, for
	// filesystems rooted at "/".
	absPaths bool
}

func NewLoader(fs billy.Filesystem) *Loader {
	return &Loader{FS: fs}
}

// NewOSLoader returns a Loader over the host filesystem.
func NewOSLoader() *Loader {
	return &Loader{FS: osfs.New("/"), absPaths: true}
}

func (l *Loader) path(p string) (string, error) {
	if !l.absPaths {
		return p, nil
	}
	return filepath.Abs(p)
}

// Load reads the document at path. The format follows the extension.
func (l *Loader) Load(path string) (*api.Document, error) {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	p, err := l.path(path)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(l.FS, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(data, format, path)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Save writes doc to path, creating parent directories.
func (l *Loader) Save(path string, doc *api.Document, format Format) error {
	if format == FormatUnknown {
		format = FormatFromPath(path)
	}
	data, err := Encode(doc, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p, err := l.path(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := l.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(l.FS, p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Decode parses a document. name is used in error messages.
func Decode(data []byte, format Format, name string) (*api.Document, error) {
	var doc api.Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json %s: %w", name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml %s: %w", name, err)
		}
	case FormatHCL:
		return decodeHCL(data, name)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	return &doc, nil
}

// Encode serializes a document. HCL is read-only.
func Encode(doc *api.Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("cannot write %s: %w", format, ErrUnsupportedFormat)
}

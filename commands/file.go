package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/subst-go/subst"
)

// File resolves local file contents. Without a field selector the value is
// the whole file, verbatim. With a selector the file is parsed according
// to its extension (.json, .yml/.yaml, .toml) and the named top-level
// field is projected.
//
// File implements Fetcher, so one placeholder path referenced through
// several selectors is read and parsed once per interpolation call.
type File struct {
	// Sandbox, when set, is prepended to every path; paths that traverse
	// outside it are refused.
	Sandbox string
}

var _ subst.Fetcher = (*File)(nil)

// NewFile creates a File command with no sandbox.
func NewFile() *File {
	return &File{}
}

// Fetch reads and, when the extension is a known structured format,
// parses the file at the placeholder's path.
func (f *File) Fetch(_ context.Context, in subst.Input) (*subst.Entry, error) {
	path := strings.TrimSpace(in.Path)
	if path == "" {
		return nil, errors.Errorf("file: invalid path %q", in.Path)
	}

	path, err := f.sandboxed(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "file")
	}

	entry := &subst.Entry{Value: string(data), Scalar: true}

	fields, err := parseStructured(path, data)
	if err != nil {
		// Projection is the only consumer of the parsed form; a raw read
		// of a malformed file is still a valid scalar value.
		if in.Field != "" {
			return nil, err
		}
		return entry, nil
	}
	entry.Data = fields

	return entry, nil
}

// Process implements Command for use without the per-call cache.
func (f *File) Process(ctx context.Context, in subst.Input) (string, error) {
	return processEntry(ctx, f, in)
}

// parseStructured decodes data into top-level fields when the path's
// extension names a supported format. A nil map with a nil error means the
// format is not structured.
func parseStructured(path string, data []byte) (map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var m map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrapf(err, "file: parse %s", path)
		}
		return m, nil

	case ".yml", ".yaml":
		var raw map[interface{}]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, "file: parse %s", path)
		}
		m := make(map[string]interface{}, len(raw))
		for k, v := range raw {
			m[fmt.Sprintf("%v", k)] = v
		}
		return m, nil

	case ".toml":
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrapf(err, "file: parse %s", path)
		}
		return m, nil
	}
	return nil, nil
}

// sandboxed prefixes the path with the sandbox directory and refuses paths
// that traverse back out of it.
func (f *File) sandboxed(path string) (string, error) {
	if f.Sandbox == "" {
		return path, nil
	}
	joined := filepath.Clean(filepath.Join(f.Sandbox, path))
	rel, err := filepath.Rel(f.Sandbox, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("file: %q escapes the sandbox", path)
	}
	return joined, nil
}

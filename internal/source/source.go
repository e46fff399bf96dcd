// Package source reads and writes the files an evaluation run works from:
// instance dumps, ground truth and prediction records, the accounts CSV,
// tenant information and account structure files.
package source

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Store gives file access rooted in an afero filesystem.
type Store struct {
	fs afero.Fs
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the underlying filesystem.
func (s *Store) Fs() afero.Fs { return s.fs }

// ReadJSON decodes the JSON file at path into v, keeping number literals.
func (s *Store) ReadJSON(path string, v any) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if isNotExist(err) {
			return errors.NewNotFoundError("file", path)
		}
		return errors.WrapIO("read", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

// ReadObject reads a JSON object file.
func (s *Store) ReadObject(path string) (map[string]any, error) {
	var m map[string]any
	if err := s.ReadJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func (s *Store) WriteJSON(path string, v any) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return errors.WrapResource("encode", "json", path, err)
	}
	return errors.WrapIO("write", path, afero.WriteFile(s.fs, path, buf.Bytes(), constants.FilePermissions))
}

// Create opens path for writing, creating parent directories.
func (s *Store) Create(path string) (afero.File, error) {
	if err := s.fs.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := s.fs.Create(path)
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}
	return f, nil
}

// Open opens path for reading.
func (s *Store) Open(path string) (afero.File, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		if isNotExist(err) {
			return nil, errors.NewNotFoundError("file", path)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	return f, nil
}

// LoadReference reads and normalizes a ground truth record.
func (s *Store) LoadReference(path string) (*record.Record, error) {
	raw, err := s.ReadObject(path)
	if err != nil {
		return nil, errors.WrapResource("load", "ground truth", path, err)
	}
	return record.NormalizeReference(raw), nil
}

// LoadCandidate reads and normalizes a prediction record.
func (s *Store) LoadCandidate(path string) (*record.Record, error) {
	raw, err := s.ReadObject(path)
	if err != nil {
		return nil, errors.WrapResource("load", "prediction", path, err)
	}
	return record.NormalizeCandidate(raw), nil
}

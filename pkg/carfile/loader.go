// Package carfile reads CAR documents from disk or standard input and decodes
// them into the loosely typed form the structural validator expects.
package carfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

// ExtractHint tells the user how to get car.json out of a bundle.
const ExtractHint = "Note: ZIP file detected. Please extract car.json first or use the full validator.\n" +
	"  unzip -p bundle.car.zip car.json | carcheck /dev/stdin"

var (
	// ErrArchive is returned for bundled (ZIP) input. Archives are never decoded.
	ErrArchive = errors.New("archive input is not supported")
	// ErrMalformed wraps JSON syntax errors.
	ErrMalformed = errors.New("malformed JSON")
	// ErrScalarDocument is returned when the document is valid JSON but null or a scalar.
	ErrScalarDocument = errors.New("CAR document must be a JSON object, not null or a scalar")
)

var zipMagic = []byte("PK\x03\x04")

const envelopeURL = "https://carcheck.schemas.local/envelope.schema.json"

// envelopeSchema only pins the top-level shape. Arrays pass so the validator
// can report their missing fields. Field rules live in pkg/car.
const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": ["object", "array"]
}`

// Loader decodes CAR documents.
type Loader struct {
	envelope *jsonschema.Schema
	stdin    io.Reader
}

// NewLoader compiles the envelope schema. stdin backs the "-" path and may be nil.
func NewLoader(stdin io.Reader) (*Loader, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(envelopeURL, strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("envelope schema load failed: %w", err)
	}
	compiled, err := c.Compile(envelopeURL)
	if err != nil {
		return nil, fmt.Errorf("envelope schema compile failed: %w", err)
	}
	return &Loader{envelope: compiled, stdin: stdin}, nil
}

// IsArchivePath reports whether path names a ZIP bundle by extension.
func IsArchivePath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zip")
}

// Load reads and decodes the document at path.
func (l *Loader) Load(path string) (any, error) {
	if IsArchivePath(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrArchive)
	}

	data, err := l.read(path)
	if err != nil {
		return nil, err
	}
	return l.Decode(path, data)
}

func (l *Loader) read(path string) ([]byte, error) {
	if path == StdinPath {
		if l.stdin == nil {
			return nil, fmt.Errorf("read stdin: no input stream")
		}
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Decode parses data as a single JSON object or array. name is used in error messages.
// Numbers are kept as json.Number so identifiers print as written.
func (l *Loader) Decode(name string, data []byte) (any, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return nil, fmt.Errorf("%s: %w", name, ErrArchive)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w: empty document", name, ErrMalformed)
		}
		return nil, fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: unexpected data after top-level value", name, ErrMalformed)
	}

	if err := l.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrScalarDocument)
	}
	return doc, nil
}

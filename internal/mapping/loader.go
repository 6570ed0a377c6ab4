package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only schema version understood by Parse.
const CurrentVersion = "1"

// LoadFile reads the mapping file at path.
func LoadFile(path string) (*MappingFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping file: %w", err)
	}
	defer f.Close()

	mf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return mf, nil
}

// Parse decodes an in-memory mapping document such as an embedded file.
func Parse(data []byte) (*MappingFile, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single mapping document from r. Unknown top-level and
// mapping keys are rejected so that typos like "diretion" do not silently
// turn a one-way mapping into a bidirectional one.
func Decode(r io.Reader) (*MappingFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var mf MappingFile
	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing mapping YAML: %w", err)
	}

	switch mf.Version {
	case "":
		mf.Version = CurrentVersion
	case CurrentVersion:
	default:
		return nil, fmt.Errorf("unsupported mapping version %q (want %q)", mf.Version, CurrentVersion)
	}

	return &mf, nil
}

// Marshal serializes mf back to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(mf); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

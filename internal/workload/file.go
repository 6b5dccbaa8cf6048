package workload

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned when a workload file names an unknown op kind.
var ErrUnknownKind = errors.New("unknown op kind")

// File is the on-disk form of a workload.
type File struct {
	Seed uint64 `yaml:"seed"`
	Mix  Mix    `yaml:"mix"`
	Ops  []Op   `yaml:"ops"`
}

// Save encodes file as YAML.
func Save(w io.Writer, file File) error {
	enc := yaml.NewEncoder(w)

	err := enc.Encode(file)
	if err != nil {
		return fmt.Errorf("encode workload: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush workload: %w", err)
	}

	return nil
}

// Load decodes a YAML workload and rejects unknown op kinds.
func Load(r io.Reader) (File, error) {
	var file File

	err := yaml.NewDecoder(r).Decode(&file)
	if err != nil {
		return File{}, fmt.Errorf("decode workload: %w", err)
	}

	for idx, op := range file.Ops {
		if !op.Kind.Valid() {
			return File{}, fmt.Errorf("%w: op %d has kind %q", ErrUnknownKind, idx, op.Kind)
		}
	}

	return file, nil
}

// SaveFile writes file to path.
func SaveFile(path string, file File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workload file: %w", err)
	}

	err = Save(out, file)

	return errors.Join(err, out.Close())
}

// LoadFile reads a workload from path.
func LoadFile(path string) (File, error) {
	in, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open workload file: %w", err)
	}
	defer in.Close()

	return Load(in)
}

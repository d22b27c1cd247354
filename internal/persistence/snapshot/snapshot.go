// Package snapshot reads and writes portable save files: zstd-compressed
// JSON, checked against an embedded schema before it is trusted.
package snapshot

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/hexsweep/internal/engine"
)

//go:embed save.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("save.schema.json", schemaJSON)

// Write stores st at path, replacing any existing file.
func Write(path string, st engine.SaveState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, st); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(w io.Writer, st engine.SaveState) error {
	if st.Cells == nil {
		st.Cells = []engine.SavedCell{}
	}
	if st.LockedZones == nil {
		st.LockedZones = []string{}
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	if err := json.NewEncoder(bw).Encode(st); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads the save at path.
func Read(path string) (engine.SaveState, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.SaveState{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decompresses, validates and decodes a save.
func Decode(r io.Reader) (engine.SaveState, error) {
	var st engine.SaveState

	dec, err := zstd.NewReader(r)
	if err != nil {
		return st, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return st, fmt.Errorf("zstd: %w", err)
	}
	if err := Validate(raw); err != nil {
		return st, err
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("json decode: %w", err)
	}
	return st, nil
}

// Validate checks raw save JSON against the save schema.
func Validate(raw []byte) error {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	var doc any
	if err := d.Decode(&doc); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}
	return nil
}

package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nestlayout/pkg/errors"
)

// Decode reads a single scene tree from r.
// The document must be a JSON object; trailing data is rejected.
func Decode(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	var root Node
	if err := dec.Decode(&root); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scene")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "decode scene: unexpected data after document")
	}
	return &root, nil
}

// Unmarshal decodes a scene tree from data.
func Unmarshal(data []byte) (*Node, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile reads and decodes the scene tree stored at path.
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes the tree as JSON indented by two spaces, followed by a newline.
func Encode(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the indented encoding of the tree without a trailing newline.
func Marshal(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteFile encodes the tree into a file at path.
// The file is created with 0644 permissions.
func WriteFile(root *Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, root); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

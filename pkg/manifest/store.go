package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/moby/sys/atomicwriter"
	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/modsync/pkg/errors"
)

// ErrUnsupportedFormat is returned for manifest paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

type codec interface {
	decode(data []byte, m *Manifest) error
	encode(m Manifest) ([]byte, error)
}

type jsonCodec struct{}

func (jsonCodec) decode(data []byte, m *Manifest) error { return json.Unmarshal(data, m) }

func (jsonCodec) encode(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type tomlCodec struct{}

func (tomlCodec) decode(data []byte, m *Manifest) error {
	_, err := toml.Decode(string(data), m)
	return err
}

func (tomlCodec) encode(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte, m *Manifest) error { return yaml.Unmarshal(data, m) }

func (yamlCodec) encode(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}, nil
	case ".toml":
		return tomlCodec{}, nil
	case ".yaml", ".yml":
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and validates the manifest at path. URLs are normalized before
// it returns. Every failure is an INVALID_MANIFEST coded error, which aborts
// a reconcile run.
func Load(path string) (Manifest, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "load %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	return parse(c, path, data)
}

// Parse decodes manifest data using the format implied by name's extension.
func Parse(name string, data []byte) (Manifest, error) {
	c, err := codecFor(name)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	return parse(c, name, data)
}

func parse(c codec, name string, data []byte) (Manifest, error) {
	m := Manifest{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := c.decode(data, &m); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "parse %s", name)
		}
	}
	if m == nil {
		m = Manifest{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

// Validate checks the required fields of every entry.
func (m Manifest) Validate() error {
	for _, id := range m.IDs() {
		e := m[id]
		if strings.TrimSpace(e.URL) == "" {
			return apperrors.New(apperrors.ErrCodeInvalidManifest, "entry %q has no url", id)
		}
		if err := apperrors.ValidateURL(e.URL); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "entry %q", id)
		}
	}
	return nil
}

// Save encodes m and atomically replaces the file at path, so readers never
// observe a partially written manifest.
func Save(path string, m Manifest) error {
	c, err := codecFor(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "save %s", path)
	}
	data, err := c.encode(m)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "create manifest dir")
	}
	if err := atomicwriter.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}

package level

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/levels.yaml
var defaultLevels []byte

// Catalog is the read-only table of levels keyed by canonical descriptor.
// It is safe for concurrent use once loaded.
type Catalog struct {
	levels map[string]*Level
}

type catalogFile struct {
	Levels map[string]*Level `yaml:"levels"`
}

// Load decodes a levels document. JSON documents are accepted as YAML.
// Levels that fail validation are kept and logged; a simulation of such a
// level reports the failure.
func Load(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding levels: %w", err)
	}

	c := &Catalog{levels: make(map[string]*Level, len(f.Levels))}
	for name, lvl := range f.Levels {
		if lvl == nil {
			return nil, fmt.Errorf("level %s: empty definition", name)
		}
		if _, err := ParseDescriptor(name); err != nil {
			slog.Warn("level key is not a canonical descriptor", "level", name, "error", err)
		}
		lvl.Name = name
		if err := lvl.Validate(); err != nil {
			slog.Warn("level failed validation", "level", name, "error", err)
		}
		c.levels[name] = lvl
	}
	return c, nil
}

// LoadFile reads and decodes a levels file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading levels file: %w", err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Info("levels loaded", "count", c.Len(), "source", path)
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	c, err := Load(defaultLevels)
	if err != nil {
		return nil, fmt.Errorf("loading bundled levels: %w", err)
	}
	slog.Info("levels loaded", "count", c.Len(), "source", "bundled")
	return c, nil
}

// Open loads path, or the bundled catalog when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// NewCatalog builds a catalog from levels keyed by their Name.
func NewCatalog(levels ...*Level) *Catalog {
	c := &Catalog{levels: make(map[string]*Level, len(levels))}
	for _, l := range levels {
		c.levels[l.Name] = l
	}
	return c
}

// Lookup returns the level for d.
func (c *Catalog) Lookup(d Descriptor) (*Level, bool) {
	return c.Get(d.String())
}

// Get returns the level stored under its canonical name.
func (c *Catalog) Get(name string) (*Level, bool) {
	l, ok := c.levels[name]
	return l, ok
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

// Names returns the level keys in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.levels))
	for name := range c.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates every level and joins the failures.
func (c *Catalog) Validate() error {
	var errs []error
	for _, name := range c.Names() {
		if err := c.levels[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("level %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Marshal encodes the catalog back into the levels document form.
func (c *Catalog) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalogFile{Levels: c.levels}); err != nil {
		return nil, fmt.Errorf("encoding levels: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding levels: %w", err)
	}
	return buf.Bytes(), nil
}

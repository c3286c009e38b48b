// Package catalog holds the read-only scholarship catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
)

//go:embed scholarships.yaml
var defaultCatalog []byte

// Catalog is an immutable list of scholarship records indexed by id.
type Catalog struct {
	records []scholarship.Record
	byID    map[string]int
}

// Load parses the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Ids must be present and unique.
func Parse(data []byte) (*Catalog, error) {
	var records []scholarship.Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	byID := make(map[string]int, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog record %d: id is required", i)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("catalog record %d: duplicate id %q", i, r.ID)
		}
		byID[r.ID] = i
	}
	return &Catalog{records: records, byID: byID}, nil
}

// All returns the records in catalog order. The slice is a copy.
func (c *Catalog) All() []scholarship.Record {
	out := make([]scholarship.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (scholarship.Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return scholarship.Record{}, false
	}
	return c.records[i], true
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

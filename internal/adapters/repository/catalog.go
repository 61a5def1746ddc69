// Package repository provides the in-memory fixture catalogue that backs the
// dashboard collaborators in development and tests.
package repository

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/projdash/internal/domain/model"
)

//go:embed fixtures/default.yaml
var defaultCatalog []byte

// Catalog is the YAML document the fixture store serves from.
type Catalog struct {
	SampleProjects     []model.ProjectSummary    `yaml:"sample_projects"`
	MyProjects         []model.ProjectSummary    `yaml:"my_projects"`
	Feeds              []model.FeedEntry         `yaml:"feeds"`
	RunningExperiments []model.ExperimentSummary `yaml:"running_experiments"`
}

// DecodeCatalog parses a catalogue and checks that every project has an id.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	for i, p := range cat.SampleProjects {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("%w: sample_projects[%d] has no _id", ErrInvalidCatalog, i)
		}
	}
	for i, p := range cat.MyProjects {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("%w: my_projects[%d] has no _id", ErrInvalidCatalog, i)
		}
	}
	return cat, nil
}

// LoadCatalogFile reads a catalogue from path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open fixture catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeCatalog(f)
}

// DefaultCatalog returns the catalogue bundled with the binary.
func DefaultCatalog() Catalog {
	cat, err := DecodeCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return cat
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Report sources.
const (
	SourcePostgres  = "postgres"
	SourceDatastore = "datastore"
	SourceElastic   = "elastic"
)

// ReportCatalog is the YAML list of exportable reports.
type ReportCatalog struct {
	Reports []Report `yaml:"reports"`
}

// Report describes one downloadable export.
type Report struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title,omitempty"`         // Banner above the column labels
	Worksheet string `yaml:"worksheet" json:"worksheet,omitempty"` // Defaults to ID
	Source    string `yaml:"source" json:"source"`                 // "postgres", "datastore", "elastic"
	Query     string `yaml:"query" json:"-"`                       // SQL statement or Elasticsearch query string
	Kind      string `yaml:"kind" json:"-"`                        // Datastore kind
	Index     string `yaml:"index" json:"-"`                       // Elasticsearch index
	OrderBy   string `yaml:"order_by" json:"-"`
	Limit     int    `yaml:"limit" json:"-"`
}

// WorksheetName returns the worksheet the report renders into.
func (r Report) WorksheetName() string {
	if r.Worksheet != "" {
		return r.Worksheet
	}
	return r.ID
}

// LoadReports reads and validates a report catalogue file.
func LoadReports(path string) (*ReportCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	return ParseReports(data)
}

// ParseReports decodes and validates a YAML report catalogue.
func ParseReports(data []byte) (*ReportCatalog, error) {
	var catalog ReportCatalog
	if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Find returns the report with the given id.
func (c *ReportCatalog) Find(id string) (Report, bool) {
	for _, r := range c.Reports {
		if r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}

func (c *ReportCatalog) validate() error {
	seen := make(map[string]bool)
	for i, r := range c.Reports {
		if r.ID == "" {
			return fmt.Errorf("report %d: id is required", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("report %s: duplicate id", r.ID)
		}
		seen[r.ID] = true

		switch r.Source {
		case SourcePostgres:
			if r.Query == "" {
				return fmt.Errorf("report %s: query is required for %s", r.ID, r.Source)
			}
		case SourceDatastore:
			if r.Kind == "" {
				return fmt.Errorf("report %s: kind is required for %s", r.ID, r.Source)
			}
		case SourceElastic:
			if r.Index == "" {
				return fmt.Errorf("report %s: index is required for %s", r.ID, r.Source)
			}
		default:
			return fmt.Errorf("report %s: unknown source %q", r.ID, r.Source)
		}
	}
	return nil
}

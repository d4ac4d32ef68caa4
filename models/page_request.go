package models

// SchemaAuto asks the pipeline to classify the page and derive the schema.
const SchemaAuto = "auto"

// PageRequest describes one page to process.
type PageRequest struct {
	URL    string `json:"url,omitempty"`
	HTML   string `json:"html"`
	SiteID string `json:"site_id,omitempty"`
	PageID string `json:"page_id,omitempty"`

	// Optional hints
	Schema string     `json:"schema,omitempty"`
	Hint   SourceHint `json:"hint,omitempty"`
}

// PageResult bundles everything produced for one page.
type PageResult struct {
	Classification *ClassificationResult `json:"classification,omitempty" yaml:"classification,omitempty"`
	Metadata       Metadata              `json:"metadata" yaml:"metadata"`
	Pruning        PruningResult         `json:"pruning" yaml:"pruning"`
}

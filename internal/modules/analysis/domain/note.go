package domain

// Note is a report prepared for export as a markdown file.
type Note struct {
	Slug string
	Meta NoteMeta
	Body string
}

type NoteMeta struct {
	FileID          string  `yaml:"file_id"`
	FileName        string  `yaml:"filename"`
	UploadedAt      string  `yaml:"uploaded_at,omitempty"`
	ComplianceScore float64 `yaml:"compliance_score"`
	Flags           int     `yaml:"flags"`
	Hospital        string  `yaml:"hospital,omitempty"`
	ExportedAt      string  `yaml:"exported_at"`
}

package nvd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ExportSource labels where exported documents came from.
const ExportSource = "NVD API"

// ExportMetadata is the header of a bulk export file.
type ExportMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Source    string    `json:"source"`
}

// ExportDocument is the durable hand-off contract consumed by the storage and
// analysis layers.
type ExportDocument struct {
	Metadata        ExportMetadata `json:"metadata"`
	Vulnerabilities []Record       `json:"vulnerabilities"`
}

// Export writes the fetched collection to path, creating parent directories
// as needed. Record order is preserved.
func Export(records []Record, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	doc := ExportDocument{
		Metadata: ExportMetadata{
			Timestamp: time.Now(),
			Count:     len(records),
			Source:    ExportSource,
		},
		Vulnerabilities: records,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Import reads a previously exported file so a prior fetch can be reprocessed
// offline without spending API quota. A file missing the expected top-level
// fields fails with a FormatError.
func Import(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, &FormatError{Path: path, Reason: "not a JSON object"}
	}
	if _, ok := shape["metadata"]; !ok {
		return nil, &FormatError{Path: path, Reason: "missing metadata"}
	}
	vulns, ok := shape["vulnerabilities"]
	if !ok {
		return nil, &FormatError{Path: path, Reason: "missing vulnerabilities"}
	}

	var records []Record
	if err := json.Unmarshal(vulns, &records); err != nil {
		return nil, &FormatError{Path: path, Reason: "vulnerabilities is not an array of records"}
	}
	return records, nil
}

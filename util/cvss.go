// Package util provides utility functions for the backend.
package util

import (
	"strings"
	"time"

	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
	"github.com/vulnwatch/cvetrend-backend/internal/nvd"
	"github.com/vulnwatch/cvetrend-backend/model"
)

// CalculateCVSSScore calculates the CVSS base score from a vector string
func CalculateCVSSScore(vectorStr string) float64 {
	if vectorStr == "" || !strings.HasPrefix(vectorStr, "CVSS:") {
		return 0
	}
	if strings.HasPrefix(vectorStr, "CVSS:3.1") || strings.HasPrefix(vectorStr, "CVSS:3.0") {
		if cvss31, err := gocvss31.ParseVector(vectorStr); err == nil {
			return cvss31.BaseScore()
		}
	}
	if strings.HasPrefix(vectorStr, "CVSS:4.0") {
		if cvss40, err := gocvss40.ParseVector(vectorStr); err == nil {
			return cvss40.Score()
		}
	}
	return 0
}

// GetSeverityRating returns the severity rating for a given CVSS score
func GetSeverityRating(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// metric lookup order: v3.1 data is preferred over v3.0 when both exist
var cvssMetricKeys = []string{"cvssMetricV31", "cvssMetricV30"}

// BuildStoredCVE flattens a raw NVD record into the stored document shape.
// Every lookup is defensive: a field the record does not carry simply stays
// zero, and the severity rating is recomputed from the vector string when the
// API omits the base score.
func BuildStoredCVE(rec nvd.Record, now time.Time) model.StoredCVE {
	root := map[string]interface{}(rec)

	doc := model.StoredCVE{
		CveID:     rec.ID(),
		Source:    nvd.ExportSource,
		ObjType:   "StoredCVE",
		Raw:       root,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc.Published, _ = nvd.NestedString(root, "cve", "published")
	doc.LastModified, _ = nvd.NestedString(root, "cve", "lastModified")
	doc.Description = englishDescription(root)

	for _, metricKey := range cvssMetricKeys {
		score, scoreOK := nvd.NestedFloat(root, "cve", "metrics", metricKey, 0, "cvssData", "baseScore")
		vector, _ := nvd.NestedString(root, "cve", "metrics", metricKey, 0, "cvssData", "vectorString")

		if !scoreOK && vector != "" {
			score = CalculateCVSSScore(vector)
			scoreOK = score > 0
		}
		if scoreOK {
			doc.CVSSBaseScore = score
			doc.CVSSVector = vector
			break
		}
	}

	if tier, ok := nvd.SeverityTier(rec); ok {
		doc.SeverityRating = strings.ToUpper(strings.TrimSpace(tier))
	} else {
		doc.SeverityRating = GetSeverityRating(doc.CVSSBaseScore)
	}

	return doc
}

// englishDescription picks the en-language entry from the descriptions list,
// falling back to the first entry of any language.
func englishDescription(root map[string]interface{}) string {
	for i := 0; ; i++ {
		lang, ok := nvd.NestedString(root, "cve", "descriptions", i, "lang")
		if !ok {
			break
		}
		if strings.EqualFold(lang, "en") {
			value, _ := nvd.NestedString(root, "cve", "descriptions", i, "value")
			return value
		}
	}
	value, _ := nvd.NestedString(root, "cve", "descriptions", 0, "value")
	return value
}

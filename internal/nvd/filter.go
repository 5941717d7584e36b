package nvd

import "strings"

// NestedString walks a JSON-decoded structure along a path of string keys and
// integer indexes, returning the string at the end. Absence or a malformed
// shape at any step yields ("", false); it never panics. This keeps opaque
// record traversal a first-class, testable outcome instead of control flow
// by recovered type assertions.
func NestedString(v interface{}, path ...interface{}) (string, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			if !ok {
				return "", false
			}
			cur, ok = m[key]
			if !ok {
				return "", false
			}
		case int:
			s, ok := cur.([]interface{})
			if !ok || key < 0 || key >= len(s) {
				return "", false
			}
			cur = s[key]
		default:
			return "", false
		}
	}
	str, ok := cur.(string)
	return str, ok
}

// NestedFloat is NestedString for numeric leaves. JSON numbers decode to
// float64, which is the only numeric shape accepted.
func NestedFloat(v interface{}, path ...interface{}) (float64, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			if !ok {
				return 0, false
			}
			cur, ok = m[key]
			if !ok {
				return 0, false
			}
		case int:
			s, ok := cur.([]interface{})
			if !ok || key < 0 || key >= len(s) {
				return 0, false
			}
			cur = s[key]
		default:
			return 0, false
		}
	}
	f, ok := cur.(float64)
	return f, ok
}

// SeverityTier extracts the CVSS base severity of a record, preferring v3.1
// metrics over v3.0. The second return is false when the record carries no
// readable tier.
func SeverityTier(r Record) (string, bool) {
	root := map[string]interface{}(r)
	for _, metricKey := range []string{"cvssMetricV31", "cvssMetricV30"} {
		if tier, ok := NestedString(root, "cve", "metrics", metricKey, 0, "cvssData", "baseSeverity"); ok {
			if strings.TrimSpace(tier) == "" {
				continue
			}
			return tier, true
		}
	}
	return "", false
}

// FilterBySeverity retains the records whose severity tier case-insensitively
// equals the requested one. Records with an absent or malformed tier simply
// do not match; the filter is pure and never fails.
func FilterBySeverity(records []Record, severity string) []Record {
	want := strings.TrimSpace(severity)
	if want == "" {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		tier, ok := SeverityTier(r)
		if ok && strings.EqualFold(tier, want) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"cv-creator/internal/apperr"
)

// MarshalProfile encodes a collected profile as indented JSON. The output is the file
// format accepted by UnmarshalProfile.
func MarshalProfile(p Profile) ([]byte, error) {
	return json.MarshalIndent(p.Normalize(), "", "  ")
}

// UnmarshalProfile parses structured-data input. The document is validated
// against the schema first; nothing is returned on failure so callers keep
// their previous state.
func UnmarshalProfile(data []byte) (Profile, error) {
	if err := ValidateJSON(data); err != nil {
		return Profile{}, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", apperr.ErrMalformedInput, err)
	}
	return NewProfileFromMap(m), nil
}

// NewProfileFromMap converts a generic map into a Profile. It accepts the
// shapes older files used (skills as one comma-separated string, null
// values, localized "native" levels) and always returns non-nil
// collections. Entry filtering is left to Collect.
func NewProfileFromMap(m map[string]interface{}) Profile {
	p := Profile{
		FirstName: str(m["firstName"]),
		LastName:  str(m["lastName"]),
		Email:     str(m["email"]),
		Phone:     str(m["phone"]),
		Address:   str(m["address"]),
		LinkedIn:  str(m["linkedin"]),
		GitHub:    str(m["github"]),
		Summary:   str(m["summary"]),
		Photo:     str(m["photo"]),
	}

	for _, it := range objects(m["experience"]) {
		p.Experience = append(p.Experience, Experience{
			Position:    str(it["position"]),
			Company:     str(it["company"]),
			Start:       str(it["start"]),
			End:         str(it["end"]),
			Current:     it["current"] == true,
			Description: str(it["description"]),
		})
	}
	for _, it := range objects(m["education"]) {
		p.Education = append(p.Education, Education{
			School: str(it["school"]),
			Degree: str(it["degree"]),
			Start:  str(it["start"]),
			End:    str(it["end"]),
		})
	}

	switch t := m["skills"].(type) {
	case []interface{}:
		for _, it := range t {
			if s, ok := it.(string); ok {
				p.Skills = append(p.Skills, s)
			}
		}
	case string:
		p.Skills = SplitSkills(t)
	}

	for _, it := range objects(m["languages"]) {
		p.Languages = append(p.Languages, Language{
			Name:  str(it["name"]),
			Level: ParseLevel(str(it["level"])),
		})
	}
	for _, it := range objects(m["projects"]) {
		p.Projects = append(p.Projects, Project{
			Name:        str(it["name"]),
			URL:         str(it["url"]),
			Description: str(it["description"]),
		})
	}
	for _, it := range objects(m["certificates"]) {
		p.Certificates = append(p.Certificates, Certificate{
			Name: str(it["name"]),
			Org:  str(it["org"]),
			Date: str(it["date"]),
			URL:  str(it["url"]),
		})
	}

	return p.Normalize()
}

// ParseLevel maps user-facing spellings onto the proficiency scale. Unknown
// values are kept verbatim so Collect can drop the entry.
func ParseLevel(s string) LanguageLevel {
	switch v := strings.TrimSpace(s); strings.ToLower(v) {
	case "native", "родной", "mother tongue":
		return LevelNative
	case "a1", "a2", "b1", "b2", "c1", "c2":
		return LanguageLevel(strings.ToUpper(v))
	default:
		return LanguageLevel(v)
	}
}

func str(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func objects(v interface{}) []map[string]interface{} {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(arr))
	for _, it := range arr {
		if obj, ok := it.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

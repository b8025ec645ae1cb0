package model

// Go models that match profile.schema.json used for import validation and export.

// LanguageLevel is a CEFR level or LevelNative.
type LanguageLevel string

const (
	LevelA1     LanguageLevel = "A1"
	LevelA2     LanguageLevel = "A2"
	LevelB1     LanguageLevel = "B1"
	LevelB2     LanguageLevel = "B2"
	LevelC1     LanguageLevel = "C1"
	LevelC2     LanguageLevel = "C2"
	LevelNative LanguageLevel = "native"
)

// Levels lists the proficiency scale in ascending order.
var Levels = []LanguageLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2, LevelNative}

// Valid reports whether l is on the proficiency scale.
func (l LanguageLevel) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

const (
	MaxSummaryRunes     = 2000
	MaxDescriptionRunes = 1000
)

type Experience struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type Language struct {
	Name  string        `json:"name"`
	Level LanguageLevel `json:"level"`
}

type Project struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Certificate struct {
	Name string `json:"name"`
	Org  string `json:"org"`
	Date string `json:"date"`
	URL  string `json:"url"`
}

// Profile is one CV as collected from the form. Every entry in its collections
// already satisfies the required-field rules of its section.
type Profile struct {
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address"`
	LinkedIn     string        `json:"linkedin"`
	GitHub       string        `json:"github"`
	Summary      string        `json:"summary"`
	Photo        string        `json:"photo"`
	Experience   []Experience  `json:"experience"`
	Education    []Education   `json:"education"`
	Skills       []string      `json:"skills"`
	Languages    []Language    `json:"languages"`
	Projects     []Project     `json:"projects"`
	Certificates []Certificate `json:"certificates"`
}

// Complete reports whether the identity fields that gate the preview are set.
func (p Profile) Complete() bool {
	return p.FirstName != "" && p.LastName != "" && p.Email != "" && p.Phone != ""
}

// FullName joins first and last name with a space.
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Normalize replaces nil collections with empty ones so the JSON form always
// carries arrays.
func (p Profile) Normalize() Profile {
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Languages == nil {
		p.Languages = []Language{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Certificates == nil {
		p.Certificates = []Certificate{}
	}
	return p
}

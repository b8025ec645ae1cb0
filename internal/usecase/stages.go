package usecase

import (
	"math"

	"cv-creator/internal/model"
)

// StageValidationResult holds the completion state of one form stage.
type StageValidationResult struct {
	Stage   string
	Valid   bool
	Missing []string
}

// Progress summarises how much of the form is filled in. Each identity
// field counts as one slot, as do the summary and each non-empty
// collection.
type Progress struct {
	Percent int                     `json:"percent"`
	Filled  int                     `json:"filled"`
	Total   int                     `json:"total"`
	Missing []string                `json:"missing"`
	Stages  []StageValidationResult `json:"-"`
}

// IdentityStage checks the fields that gate the preview.
func IdentityStage(p model.Profile) StageValidationResult {
	r := StageValidationResult{Stage: "identity", Valid: true, Missing: []string{}}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"email", p.Email},
		{"phone", p.Phone},
	} {
		if f.value == "" {
			r.Valid = false
			r.Missing = append(r.Missing, f.name)
		}
	}
	return r
}

// ContentStage checks the summary and every collection for content.
func ContentStage(p model.Profile) StageValidationResult {
	r := StageValidationResult{Stage: "content", Valid: true, Missing: []string{}}
	check := func(name string, filled bool) {
		if !filled {
			r.Valid = false
			r.Missing = append(r.Missing, name)
		}
	}
	check("summary", p.Summary != "")
	check("experience", len(p.Experience) > 0)
	check("education", len(p.Education) > 0)
	check("skills", len(p.Skills) > 0)
	check("languages", len(p.Languages) > 0)
	check("projects", len(p.Projects) > 0)
	check("certificates", len(p.Certificates) > 0)
	return r
}

const progressSlots = 11

// ComputeProgress runs both stages over a collected profile.
func ComputeProgress(p model.Profile) Progress {
	stages := []StageValidationResult{IdentityStage(p), ContentStage(p)}
	missing := []string{}
	for _, s := range stages {
		missing = append(missing, s.Missing...)
	}
	filled := progressSlots - len(missing)
	return Progress{
		Percent: int(math.Round(float64(filled) / progressSlots * 100)),
		Filled:  filled,
		Total:   progressSlots,
		Missing: missing,
		Stages:  stages,
	}
}

package model

import (
	_ "embed"
	"fmt"
	"strings"

	"cv-creator/internal/apperr"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(profileSchema)

// ValidateJSON validates raw structured-data input against profile.schema.json.
// Failures wrap apperr.ErrMalformedInput.
func ValidateJSON(data []byte) error {
	docLoader := gojsonschema.NewBytesLoader(data)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMalformedInput, err)
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: schema validation failed: %s", apperr.ErrMalformedInput, strings.Join(msgs, "; "))
}

// Schema returns the JSON schema of the structured-data file.
func Schema() []byte {
	return append([]byte(nil), profileSchema...)
}

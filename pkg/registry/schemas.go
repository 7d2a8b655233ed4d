package registry

import (
	"fmt"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateTerms checks a terms document against the deal type's JSON
// Schema and returns one message per violation. An empty result means
// the terms are acceptable. Schema enforcement happens at the CRUD
// boundary (create / update terms); stage transitions run the per-stage
// field rules instead.
func (r *Registry) ValidateTerms(dealType models.DealType, terms map[string]any) ([]string, error) {
	config := r.GetConfig(dealType)
	if config.TermsSchema == nil {
		return nil, nil
	}

	if terms == nil {
		terms = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(config.TermsSchema)
	dataLoader := gojsonschema.NewGoLoader(terms)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate terms for deal type %s: %w", dealType, err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		violations = append(violations, resultError.String())
	}

	return violations, nil
}

package tools

import (
	"persona-agent/internal/llm"
	apperrors "persona-agent/pkg/errors"
)

// Catalog is the immutable, validated set of tool declarations presented to
// the model. Construct it once at startup; a validation failure is fatal.
type Catalog struct {
	defs []llm.Tool
}

// NewCatalog builds the catalog from Definitions and validates it against
// the executor's handler set. Returns a SchemaError on any mismatch.
func NewCatalog() (*Catalog, error) {
	defs := Definitions()

	declared := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, err
		}
		if _, dup := declared[def.Function.Name]; dup {
			return nil, apperrors.NewSchemaError(def.Function.Name, "duplicate tool name")
		}
		declared[def.Function.Name] = struct{}{}

		// A declared tool with no matching implementation must fail at
		// startup, not at call time.
		if _, ok := implemented[def.Function.Name]; !ok {
			return nil, apperrors.NewSchemaError(def.Function.Name, "no registered implementation")
		}
	}

	for name := range implemented {
		if _, ok := declared[name]; !ok {
			return nil, apperrors.NewSchemaError(name, "implemented but not declared in the catalog")
		}
	}

	return &Catalog{defs: defs}, nil
}

// Definitions returns the ordered tool declarations
func (c *Catalog) Definitions() []llm.Tool {
	return c.defs
}

func validateDefinition(def llm.Tool) error {
	name := def.Function.Name
	if name == "" {
		return apperrors.NewSchemaError(name, "empty tool name")
	}
	if def.Function.Description == "" {
		return apperrors.NewSchemaError(name, "empty description")
	}

	params := def.Function.Parameters
	if params == nil {
		return apperrors.NewSchemaError(name, "missing parameter schema")
	}

	properties, _ := params["properties"].(map[string]interface{})
	required, _ := params["required"].([]string)
	for _, field := range required {
		if _, ok := properties[field]; !ok {
			return apperrors.NewSchemaError(name, "required parameter "+field+" is not declared")
		}
	}

	return nil
}

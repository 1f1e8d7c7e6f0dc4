package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

//go:embed schema/*.json
var schemaFS embed.FS

// RequestValidator checks inbound `metadata` maps and `RRuleOptions`
// bodies against bundled JSON Schema contracts at the HTTP boundary
// (§11), the same schema-contract role
// base-server/modules/templates/services/renderer plays for its
// template payloads — compiled once at startup rather than per request.
type RequestValidator struct {
	metadata     *jsonschema.Schema
	rruleOptions *jsonschema.Schema
}

// NewRequestValidator compiles the bundled schema contracts.
func NewRequestValidator() (*RequestValidator, error) {
	compiler := jsonschema.NewCompiler()
	for _, name := range []string{"metadata.schema.json", "rrule_options.schema.json"} {
		raw, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			return nil, err
		}
	}
	metadata, err := compiler.Compile("metadata.schema.json")
	if err != nil {
		return nil, err
	}
	rruleOptions, err := compiler.Compile("rrule_options.schema.json")
	if err != nil {
		return nil, err
	}
	return &RequestValidator{metadata: metadata, rruleOptions: rruleOptions}, nil
}

func validateAgainst(schema *jsonschema.Schema, raw json.RawMessage) error {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return apperr.WrapBadInput(err, "invalid JSON")
	}
	if err := schema.Validate(data); err != nil {
		return apperr.WrapBadInput(err, "schema validation failed")
	}
	return nil
}

// validateMetadataAndRecurrence checks the request body's `metadata` and
// `recurrence` sub-documents, when present, against the bundled schemas,
// ahead of the struct-level `binding:"required"` checks (dto.go) and the
// domain constructors' own validation. Uses ShouldBindBodyWith so the
// body can still be re-read by the handler's own ShouldBindBodyWith call.
func validateMetadataAndRecurrence(c *gin.Context, deps *Deps) error {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		return nil // malformed JSON is reported by the handler's own bind
	}
	if md, ok := raw["metadata"]; ok && string(md) != "null" {
		if err := validateAgainst(deps.Validator.metadata, md); err != nil {
			return err
		}
	}
	if rr, ok := raw["recurrence"]; ok && string(rr) != "null" {
		if err := validateAgainst(deps.Validator.rruleOptions, rr); err != nil {
			return err
		}
	}
	return nil
}

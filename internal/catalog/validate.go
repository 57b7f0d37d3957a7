package catalog

import (
	"embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema/*.cue
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		content, err := schemaFS.ReadFile("schema/catalog.cue")
		if err != nil {
			schemaErr = fmt.Errorf("embedded schema missing: %w", err)
			return
		}
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileBytes(content, cue.Filename("catalog.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("embedded schema invalid: %w", err)
			return
		}
		schemaVal = v
	})
	return schemaCtx, schemaVal, schemaErr
}

// ValidateYAML checks raw catalog YAML against the embedded CUE schema.
// It returns human-readable findings; an empty slice means the data is
// structurally sound. A broken schema degrades to Go-side validation only.
func ValidateYAML(raw []byte) []string {
	ctx, schema, err := loadSchema()
	if err != nil {
		return nil
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return []string{fmt.Sprintf("ungültiges YAML: %v", err)}
	}
	val := ctx.Encode(data)
	if err := val.Err(); err != nil {
		return []string{err.Error()}
	}
	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return []string{err.Error()}
	}
	return nil
}

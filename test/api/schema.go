/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Names of the schemas in schemas/media-api.yaml.
const (
	SchemaMedia      = "Media"
	SchemaMediaList  = "MediaList"
	SchemaMediaItem  = "MediaItem"
	SchemaCount      = "Count"
	SchemaMetaList   = "MetaList"
	SchemaCouponList = "CouponList"
	SchemaError      = "Error"
)

//go:embed schemas/media-api.yaml
var schemaDocument []byte

var (
	schemaOnce sync.Once
	schemas    openapi3.Schemas
	schemaErr  error
)

func loadSchemas() (openapi3.Schemas, error) {
	schemaOnce.Do(func() {
		loader := openapi3.NewLoader()

		doc, err := loader.LoadFromData(schemaDocument)
		if err != nil {
			schemaErr = fmt.Errorf("loading response schemas: %w", err)
			return
		}

		if err := doc.Validate(context.Background()); err != nil {
			schemaErr = fmt.Errorf("validating response schemas: %w", err)
			return
		}

		schemas = doc.Components.Schemas
	})

	return schemas, schemaErr
}

// ValidateSchema checks a payload against one of the response schemas and
// reports every violation, not just the first.
func ValidateSchema(name string, value Value) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}

	ref, ok := all[name]
	if !ok || ref.Value == nil {
		return fmt.Errorf("unknown schema %q", name)
	}

	if !value.IsJSON() {
		return fmt.Errorf("schema %s: expected a JSON document, got %s", name, value.Kind())
	}

	if err := ref.Value.VisitJSON(value.Interface(), openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	return nil
}

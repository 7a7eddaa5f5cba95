//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package tool reflects Go argument structs into tool parameter schemas.
package tool

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
)

// GenerateJSONSchema reflects t into an inline object schema.
//
// Field names follow the json tag. Fields without omitempty are required.
// Descriptions, defaults and formats come from the jsonschema and
// jsonschema_description tags, e.g.
//
//	Limit int `json:"limit,omitempty" jsonschema:"default=10,minimum=1"`
func GenerateJSONSchema(t reflect.Type) (*tool.Schema, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
		Anonymous:                 true,
	}
	raw, err := json.Marshal(reflector.ReflectFromType(t))
	if err != nil {
		return nil, fmt.Errorf("tool: marshal schema for %s: %w", t, err)
	}
	schema := &tool.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("tool: decode schema for %s: %w", t, err)
	}
	return schema, nil
}

// Package schemas embeds the JSON Schemas shipped with the benchmark
// tooling.
package schemas

import _ "embed"

// SweepSchemaJSON is the JSON Schema for sweep configuration files.
//
//go:embed sweep.schema.json
var SweepSchemaJSON string

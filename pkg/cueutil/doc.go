// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE data against an embedded schema
// definition and decodes the unified value into Go.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename("config.cue"))
//
// Errors carry the file name and a JSON-path to the offending field, e.g.
// "config.cue: vcs.backend: 2 errors in empty disjunction".
package cueutil

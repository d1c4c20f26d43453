// Package schemas carries the JSON Schemas for the configuration file and
// the bridge frame format, embedded so validation works regardless of the
// process working directory.
package schemas

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var Config []byte

//go:embed frame.schema.json
var Frame []byte

// Compile builds a validator from one of the embedded schema documents.
func Compile(name string, data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return s, nil
}

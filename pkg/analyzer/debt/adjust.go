package debt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/burden-dev/burden/pkg/models"
)

// adjustmentSchema validates external adjustment files before any value
// reaches the composer. The composer treats bonuses opaquely; validation is
// the only gate.
const adjustmentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["adjustments"],
  "additionalProperties": false,
  "properties": {
    "adjustments": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "name", "bonus"],
        "additionalProperties": false,
        "properties": {
          "file": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "line": {"type": "integer", "minimum": 1},
          "bonus": {"type": "number", "minimum": -10, "maximum": 10},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

// AdjustmentEntry is one externally supplied per-function bonus.
type AdjustmentEntry struct {
	File   string  `json:"file"`
	Name   string  `json:"name"`
	Line   uint32  `json:"line,omitempty"`
	Bonus  float64 `json:"bonus"`
	Reason string  `json:"reason,omitempty"`
}

// Adjustments resolves external bonuses per function. Entries without a line
// match any function with that file and name.
type Adjustments struct {
	exact  map[models.FunctionID]float64
	byName map[string]float64
}

// For returns the bonus for a function, zero when none applies. Exact
// (file, name, line) matches win over line-less ones.
func (a Adjustments) For(id models.FunctionID) float64 {
	if bonus, ok := a.exact[id]; ok {
		return bonus
	}
	return a.byName[id.File+"\x00"+id.Name]
}

// Len reports the number of loaded entries.
func (a Adjustments) Len() int {
	return len(a.exact) + len(a.byName)
}

// ParseAdjustments validates raw JSON against the adjustment schema and
// builds the lookup. Validation failures are returned verbatim so the user
// sees the offending path.
func ParseAdjustments(data []byte) (Adjustments, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(adjustmentSchema))
	if err != nil {
		return Adjustments{}, fmt.Errorf("compiling adjustment schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("adjustments.json", doc); err != nil {
		return Adjustments{}, fmt.Errorf("compiling adjustment schema: %w", err)
	}
	schema, err := compiler.Compile("adjustments.json")
	if err != nil {
		return Adjustments{}, fmt.Errorf("compiling adjustment schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Adjustments{}, fmt.Errorf("parsing adjustments: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return Adjustments{}, fmt.Errorf("invalid adjustments: %w", err)
	}

	var payload struct {
		Adjustments []AdjustmentEntry `json:"adjustments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Adjustments{}, fmt.Errorf("parsing adjustments: %w", err)
	}

	adj := Adjustments{
		exact:  make(map[models.FunctionID]float64),
		byName: make(map[string]float64),
	}
	for _, e := range payload.Adjustments {
		if e.Line > 0 {
			adj.exact[models.FunctionID{File: e.File, Name: e.Name, Line: e.Line}] = e.Bonus
			continue
		}
		adj.byName[e.File+"\x00"+e.Name] = e.Bonus
	}
	return adj, nil
}

// LoadAdjustments reads and validates an adjustment file.
func LoadAdjustments(path string) (Adjustments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Adjustments{}, fmt.Errorf("reading adjustments: %w", err)
	}
	return ParseAdjustments(data)
}

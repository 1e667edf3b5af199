package preprocess

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildStageConfigSchema returns a JSON-Schema (draft 2020-12 subset) for the
// YAML stage configuration as a generic map. Validation happens locally before
// the config is decoded, so a typoed stage name fails loudly instead of
// silently disabling a stage.
func BuildStageConfigSchema() map[string]any {
	enabled := map[string]any{"type": "boolean"}
	posInt := map[string]any{"type": "integer", "minimum": 1}
	posNum := map[string]any{"type": "number", "exclusiveMinimum": 0.0}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"orientation_correction": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           map[string]any{"enabled": enabled},
			},
			"basic_preprocessing": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"enabled": enabled,
					"adaptive_threshold": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties": map[string]any{
							"block_size": map[string]any{"type": "integer", "minimum": 3},
							"c_value":    map[string]any{"type": "number"},
						},
					},
					"median_blur": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties":           map[string]any{"kernel_size": posInt},
					},
					"sharpen": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties":           map[string]any{"enabled": enabled},
					},
					"contrast_enhancement": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties":           map[string]any{"factor": posNum},
					},
				},
			},
			"noise_removal": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"enabled": enabled,
					"method": map[string]any{
						"type": "string",
						"enum": []string{"fastNlMeansDenoising", "bilateralFilter"},
					},
					"h":                  posNum,
					"templateWindowSize": posInt,
					"searchWindowSize":   posInt,
					"d":                  posInt,
					"sigmaColor":         posNum,
					"sigmaSpace":         posNum,
				},
			},
			"morphological_operations": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"enabled": enabled,
					"operations": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"properties": map[string]any{
								"type": map[string]any{
									"type": "string",
									"enum": []string{
										"erode", "dilate", "open", "close",
										"erosion", "dilation", "opening", "closing",
									},
								},
								"kernel_size": map[string]any{
									"type":     "array",
									"items":    posInt,
									"minItems": 2,
									"maxItems": 2,
								},
								"kernel_shape": map[string]any{
									"type": "string",
									"enum": []string{"ellipse", "cross", "rect"},
								},
								"iterations": posInt,
							},
							"required": []string{"type"},
						},
					},
				},
			},
			"line_removal": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"enabled":          enabled,
					"rho":              posNum,
					"theta_degrees":    posNum,
					"threshold":        posInt,
					"min_line_length":  posInt,
					"max_line_gap":     posInt,
					"line_thickness":   posInt,
					"horizontal_lines": enabled,
					"vertical_lines":   enabled,
					"angle_tolerance":  posNum,
				},
			},
			"debug": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"save_images": enabled,
					"base_folder": map[string]any{"type": "string", "minLength": 1},
					"subfolders": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

// validateStageConfig checks a decoded YAML document against the stage schema.
func validateStageConfig(doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	schemaMap := BuildStageConfigSchema()
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("preprocess.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("preprocess.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("preprocess config does not match schema: %w", err)
	}
	return nil
}

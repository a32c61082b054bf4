package config

// FileSchema returns the JSON schema the configuration file is validated
// against before it is decoded. Returning a plain map keeps the schema
// loadable with gojsonschema.NewGoLoader without an extra parse step.
func FileSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"provider": map[string]any{
				"type": "string",
				"enum": []any{"isort", "ruff", "black"},
			},
			"timeoutSec": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
			"commands": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"command"},
					"properties": map[string]any{
						"command": map[string]any{
							"type":      "string",
							"minLength": 1,
						},
						"args": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"okExitCodes": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "integer"},
						},
						"output": map[string]any{
							"type": "string",
							"enum": []any{"diff", "full"},
						},
					},
				},
			},
		},
	}
}

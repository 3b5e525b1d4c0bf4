package ai

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/kapu/emotion-map-go/internal/domain"
	"google.golang.org/genai"
)

// AnalysisSchema declares the required shape of an emotional map analysis for
// Gemini structured output. The provider validates its own output against it;
// the same shape is what callers of the analyzer can rely on.
func AnalysisSchema() *genai.Schema {
	var intensityMin float64 = 0
	var intensityMax float64 = 100

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"core_emotions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"emotion": {Type: genai.TypeString},
						"intensity": {
							Type:    genai.TypeInteger,
							Minimum: &intensityMin,
							Maximum: &intensityMax,
						},
					},
					Required:         []string{"emotion", "intensity"},
					PropertyOrdering: []string{"emotion", "intensity"},
				},
			},
			"emotional_transitions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"from":        {Type: genai.TypeString},
						"to":          {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required:         []string{"from", "to", "description"},
					PropertyOrdering: []string{"from", "to", "description"},
				},
			},
			"triggers": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"psychological_interpretations": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"healing_suggestions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"empathetic_message": {Type: genai.TypeString},
			"mermaid_code":       {Type: genai.TypeString},
			"svg_flowchart":      {Type: genai.TypeString},
		},
		Required: []string{
			"core_emotions",
			"emotional_transitions",
			"triggers",
			"psychological_interpretations",
			"healing_suggestions",
			"empathetic_message",
			"mermaid_code",
		},
		PropertyOrdering: []string{
			"core_emotions",
			"emotional_transitions",
			"triggers",
			"psychological_interpretations",
			"healing_suggestions",
			"empathetic_message",
			"mermaid_code",
			"svg_flowchart",
		},
	}
}

var (
	analysisFormatOnce sync.Once
	analysisFormat     *JSONSchemaFormat
)

// AnalysisResponseFormat reflects the same analysis shape into an OpenAI
// json_schema response format for the fallback provider.
func AnalysisResponseFormat() *JSONSchemaFormat {
	analysisFormatOnce.Do(func() {
		analysisFormat = &JSONSchemaFormat{
			Name:   "emotional_map_analysis",
			Schema: reflectSchema[domain.EmotionalMapAnalysis](),
		}
	})
	return analysisFormat
}

func reflectSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}

	ensureStrictCompliance(m)
	return m
}

// ensureStrictCompliance patches a reflected schema for OpenAI strict mode:
// every object forbids additional properties and requires all of its fields.
func ensureStrictCompliance(schema map[string]any) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false

		if properties, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}

	if properties, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrictCompliance(propMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrictCompliance(items)
	}
}

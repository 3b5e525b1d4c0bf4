package ai

import (
	"testing"

	"google.golang.org/genai"
)

func TestAnalysisSchemaRequiredFields(t *testing.T) {
	schema := AnalysisSchema()

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected object schema, got %v", schema.Type)
	}

	required := map[string]bool{}
	for _, name := range schema.Required {
		required[name] = true
	}

	for _, name := range []string{
		"core_emotions",
		"emotional_transitions",
		"triggers",
		"psychological_interpretations",
		"healing_suggestions",
		"empathetic_message",
		"mermaid_code",
	} {
		if !required[name] {
			t.Errorf("expected %s to be required", name)
		}
	}
	if required["svg_flowchart"] {
		t.Error("svg_flowchart must not be required")
	}
	if _, ok := schema.Properties["svg_flowchart"]; !ok {
		t.Error("svg_flowchart must remain declared for wire compatibility")
	}
}

func TestAnalysisSchemaIntensityBounds(t *testing.T) {
	schema := AnalysisSchema()

	items := schema.Properties["core_emotions"].Items
	intensity := items.Properties["intensity"]

	if intensity.Minimum == nil || *intensity.Minimum != 0 {
		t.Errorf("expected intensity minimum 0, got %v", intensity.Minimum)
	}
	if intensity.Maximum == nil || *intensity.Maximum != 100 {
		t.Errorf("expected intensity maximum 100, got %v", intensity.Maximum)
	}
}

func TestAnalysisResponseFormatStrictCompliance(t *testing.T) {
	format := AnalysisResponseFormat()

	if format.Name != "emotional_map_analysis" {
		t.Errorf("unexpected format name %q", format.Name)
	}

	assertStrict(t, format.Schema)
}

func assertStrict(t *testing.T, schema map[string]any) {
	t.Helper()

	if schemaType, _ := schema["type"].(string); schemaType == "object" {
		if ap, ok := schema["additionalProperties"].(bool); !ok || ap {
			t.Errorf("object schema must forbid additional properties: %v", schema["additionalProperties"])
		}

		properties, _ := schema["properties"].(map[string]any)
		requiredLen := 0
		switch required := schema["required"].(type) {
		case []any:
			requiredLen = len(required)
		case []string:
			requiredLen = len(required)
		}
		if len(properties) > 0 && requiredLen != len(properties) {
			t.Errorf("strict mode requires all %d properties, got %d required", len(properties), requiredLen)
		}
	}

	if properties, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				assertStrict(t, propMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		assertStrict(t, items)
	}
}

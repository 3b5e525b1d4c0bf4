package domain

import "fmt"

// UserInput is the caller-supplied description of a situation plus light
// demographic context. It is immutable for the duration of an analysis call.
// An empty situation is passed through to the model as-is.
type UserInput struct {
	Situation string `json:"situation"`
	Age       int    `json:"age"`
	Country   string `json:"country"`
	Language  string `json:"language"`
}

// CoreEmotion is a single detected emotion with its intensity.
type CoreEmotion struct {
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity" jsonschema:"minimum=0,maximum=100"`
}

// EmotionalTransition describes a movement between two emotional states.
type EmotionalTransition struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Description string `json:"description"`
}

// EmotionalMapAnalysis is the structured emotional map returned by the model.
// After a successful parse all required fields are present and SVGFlowchart is
// never left undefined; it is coerced to "" when missing.
type EmotionalMapAnalysis struct {
	CoreEmotions                 []CoreEmotion         `json:"core_emotions"`
	EmotionalTransitions         []EmotionalTransition `json:"emotional_transitions"`
	Triggers                     []string              `json:"triggers"`
	PsychologicalInterpretations []string              `json:"psychological_interpretations"`
	HealingSuggestions           []string              `json:"healing_suggestions"`
	EmpatheticMessage            string                `json:"empathetic_message"`
	MermaidCode                  string                `json:"mermaid_code"`

	// Deprecated: older clients rendered a server-generated SVG. The field is
	// kept for wire compatibility and normalized to "" when absent.
	SVGFlowchart string `json:"svg_flowchart"`
}

// Validate checks that the required-field set of the analysis schema is
// populated. SVGFlowchart is intentionally excluded.
func (a *EmotionalMapAnalysis) Validate() error {
	if len(a.CoreEmotions) == 0 {
		return fmt.Errorf("analysis missing core_emotions")
	}
	if len(a.EmotionalTransitions) == 0 {
		return fmt.Errorf("analysis missing emotional_transitions")
	}
	if len(a.Triggers) == 0 {
		return fmt.Errorf("analysis missing triggers")
	}
	if len(a.PsychologicalInterpretations) == 0 {
		return fmt.Errorf("analysis missing psychological_interpretations")
	}
	if len(a.HealingSuggestions) == 0 {
		return fmt.Errorf("analysis missing healing_suggestions")
	}
	if a.EmpatheticMessage == "" {
		return fmt.Errorf("analysis missing empathetic_message")
	}
	if a.MermaidCode == "" {
		return fmt.Errorf("analysis missing mermaid_code")
	}
	return nil
}

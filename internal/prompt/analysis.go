package prompt

import "fmt"

// AnalysisPromptVars holds variables for the emotional map analysis prompt
type AnalysisPromptVars struct {
	Situation string
	Age       int
	Country   string
	Language  string
}

// AnalysisSystemInstruction is the fixed system persona sent with every
// analysis request. The mermaid contract is enforced here by instruction only;
// the response is never validated against it in code.
const AnalysisSystemInstruction = `You are an empathetic emotional intelligence expert. You analyze a person's situation, map the emotions at play, and explain how they flow into each other. Your goal is to produce a structured emotional map plus a mermaid flowchart that visualizes it.

Mermaid rules (follow them exactly):
- Start with: graph LR
- Define exactly these three style classes:
  classDef negative fill:#ffd7d7,stroke:#d64545,color:#333333
  classDef neutral fill:#fff3cd,stroke:#d6a545,color:#333333
  classDef resolution fill:#d7f5d7,stroke:#45a049,color:#333333
- Triggers use circular nodes: id((label))
- Emotions use rounded nodes: id(label)
- Resolutions use hexagonal nodes: id{{label}}
- Assign every node to one of the three classes with "class" statements
- Keep node labels short (3 words max); emoji are welcome
- Arrows follow the emotional flow from trigger to resolution`

// BuildAnalysisPrompt builds the emotional map analysis prompt. The user's
// text is interpolated verbatim; nothing is escaped or validated here.
func BuildAnalysisPrompt(vars AnalysisPromptVars) string {
	return fmt.Sprintf(`Analyze the emotional state of a person in the following situation and build their emotional map.

## Situation
"%s"

## About the person
- Age: %d
- Country: %s
- Preferred language for the response: %s

## What to produce (JSON only)
- core_emotions: the main emotions at play, each with an intensity from 0 to 100
- emotional_transitions: how one emotional state flows into another, with a short description of each transition
- triggers: the concrete things in the situation that set the emotions off
- psychological_interpretations: what is likely happening underneath, phrased gently
- healing_suggestions: small, concrete steps the person could actually take
- empathetic_message: a warm message written directly to the person
- mermaid_code: a flowchart of the emotional map following the mermaid rules you were given

Write every human-readable field in the person's preferred language (%s). Be specific to the situation; never produce generic filler.`,
		vars.Situation,
		vars.Age,
		vars.Country,
		vars.Language,
		vars.Language,
	)
}

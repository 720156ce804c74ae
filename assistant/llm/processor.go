package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pbhm215/everyday-pda/assistant"
)

// Processor implements the assistant's LLM-backed collaborator contracts:
// intent resolution, field extraction, category extraction and response
// synthesis. Each call is a single chat completion; there are no retries.
type Processor struct {
	llm     Service
	catalog *assistant.Catalog
}

// Interface guards.
var (
	_ assistant.IntentResolver      = (*Processor)(nil)
	_ assistant.FieldExtractor      = (*Processor)(nil)
	_ assistant.CategoryExtractor   = (*Processor)(nil)
	_ assistant.ResponseSynthesizer = (*Processor)(nil)
)

// NewProcessor creates a processor over the given chat service and catalog.
func NewProcessor(llm Service, catalog *assistant.Catalog) *Processor {
	return &Processor{llm: llm, catalog: catalog}
}

type useCaseSelection struct {
	UseCaseIDs []int `json:"use_case_ids"`
}

type extractedInformation struct {
	Info map[string][]string `json:"info"`
}

type extractedCategory struct {
	Info string `json:"info"`
}

// Resolve maps the message to use case ids. Ids the model hallucinates or
// that have since left the registry are filtered out.
func (p *Processor) Resolve(ctx context.Context, message string) ([]assistant.UseCaseID, error) {
	var options []string
	for _, uc := range p.catalog.All() {
		options = append(options, fmt.Sprintf("%d: %s", uc.ID, uc.Description))
	}

	prompt := fmt.Sprintf(
		"You are given this user input: %s "+
			"If the input isn't in English, internally translate it. "+
			"Available APIs with their IDs are listed here: %s. "+
			"Return a JSON object {\"use_case_ids\": [...]} with the numbers of the APIs the user input asks for.",
		message, strings.Join(options, ", "))

	raw, err := p.llm.ChatJSON(ctx, []Message{UserMessage(prompt)})
	if err != nil {
		return nil, err
	}

	var selection useCaseSelection
	if err := json.Unmarshal(stripCodeFence(raw), &selection); err != nil {
		return nil, fmt.Errorf("parse use case selection %q: %w", raw, err)
	}

	var ids []assistant.UseCaseID
	for _, id := range selection.UseCaseIDs {
		if p.catalog.Contains(assistant.UseCaseID(id)) {
			ids = append(ids, assistant.UseCaseID(id))
		}
	}
	return ids, nil
}

// Extract pulls the required fields out of the message. Every requested
// field appears in the result; a field the message does not mention maps to
// a single empty string.
func (p *Processor) Extract(ctx context.Context, message string, fields map[assistant.FieldName]struct{}) (map[assistant.FieldName][]string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, string(name))
	}

	prompt := fmt.Sprintf(
		"These are the required fields: %s. "+
			"Here's the user input: %s. "+
			"If the input isn't in English, internally translate it. "+
			"Return a JSON object {\"info\": {...}} where each key is one of the fields and the value "+
			"is a list of strings provided in the input. Usually the information provided is a single word. "+
			"If the value isn't provided always return [\"\"]. Never return the whole question.",
		strings.Join(names, ", "), message)

	raw, err := p.llm.ChatJSON(ctx, []Message{UserMessage(prompt)})
	if err != nil {
		return nil, err
	}

	var extraction extractedInformation
	if err := json.Unmarshal(stripCodeFence(raw), &extraction); err != nil {
		return nil, fmt.Errorf("parse extracted fields %q: %w", raw, err)
	}

	result := make(map[assistant.FieldName][]string, len(fields))
	for name := range fields {
		values, ok := extraction.Info[string(name)]
		if !ok {
			values = []string{""}
		}
		result[name] = values
	}
	return result, nil
}

// ExtractCategory asks for a free-form categorization and then matches it
// against the allowed values, case-insensitively by substring. The first
// allowed value contained in the extraction wins; none matching yields "".
func (p *Processor) ExtractCategory(ctx context.Context, message string, allowed []string) (string, error) {
	prompt := fmt.Sprintf(
		"These are the allowed values: %s. "+
			"Here's the user input: %s. "+
			"If the input isn't in English, internally translate it. "+
			"Return a JSON object {\"info\": \"...\"} with the single plain text string that categorizes the input. "+
			"Try as hard as possible to categorize it, but if nothing fits, return an empty string.",
		strings.Join(allowed, ", "), message)

	raw, err := p.llm.ChatJSON(ctx, []Message{UserMessage(prompt)})
	if err != nil {
		return "", err
	}

	var category extractedCategory
	if err := json.Unmarshal(stripCodeFence(raw), &category); err != nil {
		return "", fmt.Errorf("parse extracted category %q: %w", raw, err)
	}

	return MatchCategory(category.Info, allowed), nil
}

// Synthesize turns the aggregated fetcher payloads into the final reply,
// in the same language as the user input.
func (p *Processor) Synthesize(ctx context.Context, message string, data assistant.DispatchResult) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode dispatch result: %w", err)
	}

	prompt := fmt.Sprintf(
		"Here is the information provided by the API calls: %s. "+
			"And here is the prompt by the user: %s. "+
			"Ensure the response is provided in plain text and in the same language as the user input.",
		encoded, message)

	return p.llm.Chat(ctx, []Message{UserMessage(prompt)})
}

// MatchCategory returns the first allowed value contained in the extraction,
// compared case-insensitively, or "" when none is. Substring containment
// can match unintended fragments of longer words; that fuzziness is a known
// property of this matcher.
func MatchCategory(extracted string, allowed []string) string {
	lowered := strings.ToLower(strings.TrimSpace(extracted))
	if lowered == "" {
		return ""
	}
	for _, value := range allowed {
		if strings.Contains(lowered, strings.ToLower(value)) {
			return value
		}
	}
	return ""
}

// stripCodeFence unwraps a fenced code block some models wrap JSON answers
// in despite the JSON response format.
func stripCodeFence(raw string) []byte {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return []byte(trimmed)
}

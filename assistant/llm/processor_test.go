package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbhm215/everyday-pda/assistant"
)

// fakeService returns canned completions and records the prompts.
type fakeService struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeService) Chat(ctx context.Context, messages []Message) (string, error) {
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	return f.response, f.err
}

func (f *fakeService) ChatJSON(ctx context.Context, messages []Message) (string, error) {
	return f.Chat(ctx, messages)
}

func TestResolveFiltersUnknownIDs(t *testing.T) {
	svc := &fakeService{response: `{"use_case_ids": [1, 3, 42]}`}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	ids, err := p.Resolve(context.Background(), "Aktien und Wetter bitte")
	require.NoError(t, err)
	assert.Equal(t, []assistant.UseCaseID{assistant.UseCaseStocks, assistant.UseCaseWeather}, ids)
}

func TestResolvePromptListsAllUseCases(t *testing.T) {
	svc := &fakeService{response: `{"use_case_ids": []}`}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	_, err := p.Resolve(context.Background(), "hallo")
	require.NoError(t, err)
	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], "1: Stock Market Information")
	assert.Contains(t, svc.prompts[0], "8: Flight Information")
}

func TestResolveRejectsMalformedJSON(t *testing.T) {
	svc := &fakeService{response: `use cases: 1 and 3`}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	_, err := p.Resolve(context.Background(), "hallo")
	require.Error(t, err)
}

func TestResolveUnwrapsCodeFence(t *testing.T) {
	svc := &fakeService{response: "```json\n{\"use_case_ids\": [2]}\n```"}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	ids, err := p.Resolve(context.Background(), "News?")
	require.NoError(t, err)
	assert.Equal(t, []assistant.UseCaseID{assistant.UseCaseNews}, ids)
}

func TestExtractFillsMissingFieldsWithSentinel(t *testing.T) {
	svc := &fakeService{response: `{"info": {"City": ["Stuttgart"]}}`}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	fields := map[assistant.FieldName]struct{}{
		assistant.FieldCity: {},
		assistant.FieldDate: {},
	}
	result, err := p.Extract(context.Background(), "Wetter in Stuttgart", fields)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stuttgart"}, result[assistant.FieldCity])
	assert.Equal(t, []string{""}, result[assistant.FieldDate], "dropped fields get the sentinel list")
}

func TestExtractCategoryMatches(t *testing.T) {
	svc := &fakeService{response: `{"info": "I'd say this is about Technology news"}`}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	category, err := p.ExtractCategory(context.Background(), "KI-News bitte", assistant.NewsCategories)
	require.NoError(t, err)
	assert.Equal(t, "Technology", category)
}

func TestSynthesizeEncodesData(t *testing.T) {
	svc := &fakeService{response: "In Stuttgart scheint die Sonne."}
	p := NewProcessor(svc, assistant.NewCatalog(nil))

	data := assistant.DispatchResult{"Weather Forecasts": map[string]any{"Stuttgart": "sunny"}}
	response, err := p.Synthesize(context.Background(), "Wie ist das Wetter?", data)
	require.NoError(t, err)
	assert.Equal(t, "In Stuttgart scheint die Sonne.", response)

	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], `"Weather Forecasts"`)
	assert.Contains(t, svc.prompts[0], "Wie ist das Wetter?")
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		name      string
		extracted string
		allowed   []string
		expect    string
	}{
		{"exact match", "Technology", assistant.NewsCategories, "Technology"},
		{"case insensitive", "tECHNOLOGY", assistant.NewsCategories, "Technology"},
		{"substring containment", "some technology stuff", assistant.NewsCategories, "Technology"},
		{"empty extraction", "", assistant.NewsCategories, ""},
		{"whitespace only", "   ", assistant.NewsCategories, ""},
		{"no match", "astrology", []string{"Business", "Health"}, ""},
		{"first allowed wins", "business and health", assistant.NewsCategories, "Business"},
		{"transport medium", "I'd go with driving-car here", assistant.TransportMedia, "driving-car"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, MatchCategory(tt.extracted, tt.allowed))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, string(stripCodeFence(tt.raw)))
		})
	}
}

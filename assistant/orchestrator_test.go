package assistant

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	ids []UseCaseID
	err error
}

func (f *fakeResolver) Resolve(ctx context.Context, message string) ([]UseCaseID, error) {
	return f.ids, f.err
}

type fakeExtractor struct {
	fields map[FieldName][]string
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, message string, fields map[FieldName]struct{}) (map[FieldName][]string, error) {
	return f.fields, f.err
}

type fakeCategories struct {
	category string
	err      error
	calls    int
}

func (f *fakeCategories) ExtractCategory(ctx context.Context, message string, allowed []string) (string, error) {
	f.calls++
	return f.category, f.err
}

type fakeSynthesizer struct {
	response string
	err      error
	calls    int
	messages []string
	data     []DispatchResult
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, message string, data DispatchResult) (string, error) {
	f.calls++
	f.messages = append(f.messages, message)
	f.data = append(f.data, data)
	return f.response, f.err
}

func staticFetcher(payload any) Fetcher {
	return func(ctx context.Context, args ...[]string) (any, error) {
		return payload, nil
	}
}

func testOrchestrator(
	catalog *Catalog,
	resolver *fakeResolver,
	extractor *fakeExtractor,
	categories *fakeCategories,
	synthesizer *fakeSynthesizer,
	prefs *fakePrefs,
) *Orchestrator {
	o := NewOrchestrator(catalog, resolver, extractor, categories, synthesizer, prefs)
	o.now = fixedClock
	o.filler.now = fixedClock
	return o
}

func TestAnswerHappyPath(t *testing.T) {
	catalog := NewCatalog(map[UseCaseID]Fetcher{
		UseCaseWeather: staticFetcher(map[string]any{"Stuttgart": "sunny"}),
	})
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseWeather}}
	extractor := &fakeExtractor{fields: map[FieldName][]string{FieldCity: {"Stuttgart"}}}
	categories := &fakeCategories{}
	synthesizer := &fakeSynthesizer{response: "In Stuttgart scheint die Sonne."}

	o := testOrchestrator(catalog, resolver, extractor, categories, synthesizer, &fakePrefs{})

	response, err := o.Answer(context.Background(), "Wie ist das Wetter?", "toni")
	require.NoError(t, err)
	assert.Equal(t, "In Stuttgart scheint die Sonne.", response)

	require.Len(t, synthesizer.data, 1)
	assert.Contains(t, synthesizer.data[0], "Weather Forecasts")
	assert.Equal(t, "Wie ist das Wetter?", synthesizer.messages[0], "the live message reaches synthesis")
	assert.Zero(t, categories.calls, "weather has no category refinement")
}

func TestAnswerBackfillsFromPreferences(t *testing.T) {
	var stockArgs [][]string
	catalog := NewCatalog(map[UseCaseID]Fetcher{
		UseCaseStocks: captureFetcher(&stockArgs, map[string]any{}),
	})
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseStocks}}
	// The extractor found nothing usable for the stock name.
	extractor := &fakeExtractor{fields: map[FieldName][]string{FieldStockName: {""}}}
	prefs := &fakePrefs{prefs: map[FieldName][]string{FieldStockName: {"Apple", "Nvidia"}}}
	synthesizer := &fakeSynthesizer{response: "ok"}

	o := testOrchestrator(catalog, resolver, extractor, &fakeCategories{}, synthesizer, prefs)

	_, err := o.Answer(context.Background(), "Wie stehen meine Aktien?", "toni")
	require.NoError(t, err)
	require.Len(t, stockArgs, 1)
	assert.Equal(t, []string{"Apple", "Nvidia"}, stockArgs[0])
}

func TestAnswerCategoryRefinementOverwrites(t *testing.T) {
	var newsArgs [][]string
	catalog := NewCatalog(map[UseCaseID]Fetcher{
		UseCaseNews: captureFetcher(&newsArgs, map[string]any{}),
	})
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseNews}}
	extractor := &fakeExtractor{fields: map[FieldName][]string{FieldNewsTopic: {"tech stuff"}}}
	categories := &fakeCategories{category: "Technology"}
	synthesizer := &fakeSynthesizer{response: "ok"}

	o := testOrchestrator(catalog, resolver, extractor, categories, synthesizer, &fakePrefs{})

	_, err := o.Answer(context.Background(), "Was gibt's Neues in der Technik?", "toni")
	require.NoError(t, err)
	assert.Equal(t, 1, categories.calls)
	require.Len(t, newsArgs, 1)
	assert.Equal(t, []string{"Technology"}, newsArgs[0], "the matched category replaces free extraction")
}

func TestAnswerCategoryRefinementKeepsExtractionOnNoMatch(t *testing.T) {
	var newsArgs [][]string
	catalog := NewCatalog(map[UseCaseID]Fetcher{
		UseCaseNews: captureFetcher(&newsArgs, map[string]any{}),
	})
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseNews}}
	extractor := &fakeExtractor{fields: map[FieldName][]string{FieldNewsTopic: {"Sports"}}}
	categories := &fakeCategories{category: ""}
	synthesizer := &fakeSynthesizer{response: "ok"}

	o := testOrchestrator(catalog, resolver, extractor, categories, synthesizer, &fakePrefs{})

	_, err := o.Answer(context.Background(), "Sport?", "toni")
	require.NoError(t, err)
	require.Len(t, newsArgs, 1)
	assert.Equal(t, []string{"Sports"}, newsArgs[0])
}

func TestAnswerWrapsResolutionError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("model timeout")}
	o := testOrchestrator(NewCatalog(nil), resolver, &fakeExtractor{}, &fakeCategories{}, &fakeSynthesizer{}, &fakePrefs{})

	_, err := o.Answer(context.Background(), "hallo", "toni")
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
}

func TestAnswerWrapsExtractionError(t *testing.T) {
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseWeather}}
	extractor := &fakeExtractor{err: errors.New("bad json")}
	o := testOrchestrator(NewCatalog(nil), resolver, extractor, &fakeCategories{}, &fakeSynthesizer{}, &fakePrefs{})

	_, err := o.Answer(context.Background(), "Wetter?", "toni")
	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
}

func TestAnswerWrapsSynthesisError(t *testing.T) {
	catalog := NewCatalog(map[UseCaseID]Fetcher{
		UseCaseWeather: staticFetcher("sunny"),
	})
	resolver := &fakeResolver{ids: []UseCaseID{UseCaseWeather}}
	extractor := &fakeExtractor{fields: map[FieldName][]string{FieldCity: {"Stuttgart"}}}
	synthesizer := &fakeSynthesizer{err: errors.New("model down")}

	o := testOrchestrator(catalog, resolver, extractor, &fakeCategories{}, synthesizer, &fakePrefs{})

	_, err := o.Answer(context.Background(), "Wetter?", "toni")
	var synthesis *SynthesisError
	require.ErrorAs(t, err, &synthesis)
}

func morningCatalog(stockPayload, newsPayload any) *Catalog {
	return NewCatalog(map[UseCaseID]Fetcher{
		UseCaseStocks:  staticFetcher(stockPayload),
		UseCaseNews:    staticFetcher(newsPayload),
		UseCaseWeather: staticFetcher(map[string]any{"Stuttgart": "sunny"}),
	})
}

func TestMorningSummaryUsesFixedPrompt(t *testing.T) {
	synthesizer := &fakeSynthesizer{response: "Guten Morgen!"}
	prefs := &fakePrefs{prefs: map[FieldName][]string{
		FieldStockName: {"Apple"},
		FieldNewsTopic: {"technology"},
		FieldCity:      {"Stuttgart"},
	}}
	o := testOrchestrator(morningCatalog(map[string]any{}, map[string]any{}), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, prefs)

	response, err := o.MorningSummary(context.Background(), "toni")
	require.NoError(t, err)
	assert.Equal(t, "Guten Morgen!", response)

	require.Len(t, synthesizer.messages, 1)
	assert.Contains(t, synthesizer.messages[0], "Guten Morgen")
	require.Len(t, synthesizer.data, 1)
	assert.Len(t, synthesizer.data[0], 3, "stocks, news and weather are always gathered")
}

func TestProactivitySkipsSynthesisWhenNothingSignificant(t *testing.T) {
	stockPayload := map[string]any{"Apple": quote("0.4")}
	newsPayload := map[string]any{"technology": article("2026-03-10T08:00:00Z")}
	synthesizer := &fakeSynthesizer{response: "Hey!"}

	o := testOrchestrator(morningCatalog(stockPayload, newsPayload), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, &fakePrefs{})

	response, err := o.ProactivitySummary(context.Background(), "toni")
	require.NoError(t, err)
	assert.Nil(t, response)
	assert.Zero(t, synthesizer.calls, "the synthesizer must not run for an empty hour")
}

func TestProactivitySynthesizesOnSignificantStockMove(t *testing.T) {
	stockPayload := map[string]any{"Apple": quote("-1.7")}
	synthesizer := &fakeSynthesizer{response: "Hey, hast du schon gehört?"}

	o := testOrchestrator(morningCatalog(stockPayload, map[string]any{}), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, &fakePrefs{})

	response, err := o.ProactivitySummary(context.Background(), "toni")
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, "Hey, hast du schon gehört?", *response)
}

func TestProactivitySynthesizesOnFreshNews(t *testing.T) {
	newsPayload := map[string]any{"technology": article("2026-03-14T09:15:00Z")}
	synthesizer := &fakeSynthesizer{response: "Hey!"}

	// fixedClock is 09:30 UTC; the article is 15 minutes old.
	o := testOrchestrator(morningCatalog(map[string]any{}, newsPayload), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, &fakePrefs{})

	response, err := o.ProactivitySummary(context.Background(), "toni")
	require.NoError(t, err)
	require.NotNil(t, response)
}

func TestAllMorningSummariesKeepsUserOrder(t *testing.T) {
	synthesizer := &fakeSynthesizer{response: "Guten Morgen!"}
	prefs := &fakePrefs{usernames: []string{"toni", "mara"}}

	o := testOrchestrator(morningCatalog(map[string]any{}, map[string]any{}), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, prefs)

	summaries, err := o.AllMorningSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "toni", summaries[0].UserID)
	assert.Equal(t, "mara", summaries[1].UserID)
	require.NotNil(t, summaries[0].Response)
	assert.Equal(t, "Guten Morgen!", *summaries[0].Response)
}

func TestAllMorningSummariesIsolatesUserFailure(t *testing.T) {
	synthesizer := &fakeSynthesizer{response: "Guten Morgen!"}
	// mara's preference lookups fail; toni's summary must still come through.
	prefs := &fakePrefs{usernames: []string{"toni", "mara"}, failUser: "mara"}

	o := testOrchestrator(morningCatalog(map[string]any{}, map[string]any{}), &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, synthesizer, prefs)

	summaries, err := o.AllMorningSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "toni", summaries[0].UserID)
	require.NotNil(t, summaries[0].Response)
	assert.Equal(t, "Guten Morgen!", *summaries[0].Response)

	assert.Equal(t, "mara", summaries[1].UserID)
	require.NotNil(t, summaries[1].Response)
	assert.Contains(t, *summaries[1].Response, "Error:")
	assert.Contains(t, *summaries[1].Response, "connection refused")
}

func TestAllProactivitySummariesErrorSlot(t *testing.T) {
	// An unbound stocks fetcher makes the gather fail per user; the slot
	// carries the error text and the batch still completes.
	catalog := NewCatalog(nil)
	prefs := &fakePrefs{usernames: []string{"toni", "mara"}}
	o := testOrchestrator(catalog, &fakeResolver{}, &fakeExtractor{}, &fakeCategories{}, &fakeSynthesizer{}, prefs)

	summaries, err := o.AllProactivitySummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, summary := range summaries {
		require.NotNil(t, summary.Response)
		assert.Contains(t, *summary.Response, "Error:")
	}
}

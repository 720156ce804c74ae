package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Fixed instruction templates for the scheduled summary paths. They replace
// the live user message when synthesizing.
const (
	morningPrompt = "Fass mir die wichtigsten Informationen für meinen Morgen zusammen. " +
		"Gib mir das als einen zusammenhängenden Text zurück, ohne Formatierungen. " +
		"Sag am Anfang Guten Morgen!"

	proactivityPrompt = "Stell dir vor du bist proaktiv und erzählst mir etwas Neues über meine Aktien oder News. " +
		"Erwähne bei den Aktien, wie sie sich in der letzten Stunde verändert haben. " +
		"Beginne mit Hey, hast du schon gehört?"
)

// NewsCategories is the closed option set for news category refinement.
var NewsCategories = []string{"Business", "Entertainment", "General", "Health", "Science", "Sports", "Technology"}

// TransportMedia is the closed option set for travel medium refinement.
var TransportMedia = []string{"driving-car", "cycling-regular", "foot-walking", "wheelchair"}

// categoryRefinements drives the secondary extraction pass: when the owning
// use case was resolved, the listed field is re-extracted against a closed
// option set and overwritten on a non-empty match. Categorical fields need
// stricter validation than free extraction provides.
var categoryRefinements = []struct {
	useCase UseCaseID
	field   FieldName
	allowed []string
}{
	{UseCaseNews, FieldNewsTopic, NewsCategories},
	{UseCaseTravelTime, FieldTransportMedium, TransportMedia},
}

var morningUseCases = []UseCaseID{UseCaseStocks, UseCaseNews, UseCaseWeather}

var proactivityUseCases = []UseCaseID{UseCaseStocks, UseCaseNews}

// UserSummary is one user's slot in a batch summary result. Response is nil
// when the proactivity path found nothing significant for the user.
type UserSummary struct {
	UserID   string  `json:"user_id"`
	Response *string `json:"response"`
}

// Orchestrator composes the resolution, extraction, filling, dispatch and
// synthesis steps into the three entry operations. All state is
// per-request; the orchestrator itself is safe for concurrent use.
type Orchestrator struct {
	catalog     *Catalog
	resolver    IntentResolver
	extractor   FieldExtractor
	categories  CategoryExtractor
	synthesizer ResponseSynthesizer
	filler      *DataFiller
	dispatcher  *Dispatcher
	prefs       PreferenceStore
	now         func() time.Time
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(
	catalog *Catalog,
	resolver IntentResolver,
	extractor FieldExtractor,
	categories CategoryExtractor,
	synthesizer ResponseSynthesizer,
	prefs PreferenceStore,
) *Orchestrator {
	return &Orchestrator{
		catalog:     catalog,
		resolver:    resolver,
		extractor:   extractor,
		categories:  categories,
		synthesizer: synthesizer,
		filler:      NewDataFiller(prefs),
		dispatcher:  NewDispatcher(catalog),
		prefs:       prefs,
		now:         time.Now,
	}
}

// Answer resolves the message into use cases, gathers their arguments,
// dispatches the fetchers and synthesizes the reply. Every failure
// propagates to the caller uncaught.
func (o *Orchestrator) Answer(ctx context.Context, message, username string) (string, error) {
	log := slog.With("request_id", uuid.NewString(), "user", username)

	ids, err := o.resolver.Resolve(ctx, message)
	if err != nil {
		return "", &ResolutionError{Err: err}
	}
	log.Info("assistant: resolved intent", "use_cases", ids)

	fields, err := o.extractFields(ctx, message, ids)
	if err != nil {
		return "", err
	}

	if _, err := o.filler.Fill(ctx, fields, username); err != nil {
		return "", err
	}

	data, err := o.dispatcher.Dispatch(ctx, ids, fields)
	if err != nil {
		return "", err
	}
	log.Info("assistant: dispatched", "results", len(data))

	response, err := o.synthesizer.Synthesize(ctx, message, data)
	if err != nil {
		return "", &SynthesisError{Err: err}
	}
	return response, nil
}

// MorningSummary builds the fixed stocks+news+weather aggregate for one
// user from preferences and defaults alone and synthesizes it with the
// morning template.
func (o *Orchestrator) MorningSummary(ctx context.Context, username string) (string, error) {
	data, err := o.gatherFixed(ctx, morningUseCases, username)
	if err != nil {
		return "", err
	}
	response, err := o.synthesizer.Synthesize(ctx, morningPrompt, data)
	if err != nil {
		return "", &SynthesisError{Err: err}
	}
	return response, nil
}

// ProactivitySummary builds the fixed stocks+news aggregate and checks it
// for significance. When neither a notable stock move nor a fresh article
// exists, it returns nil without ever calling the synthesizer: no LLM
// spend and no notification for an empty hour.
func (o *Orchestrator) ProactivitySummary(ctx context.Context, username string) (*string, error) {
	data, err := o.gatherFixed(ctx, proactivityUseCases, username)
	if err != nil {
		return nil, err
	}

	stocksDesc := mustDescription(o.catalog, UseCaseStocks)
	newsDesc := mustDescription(o.catalog, UseCaseNews)
	stocks := SignificantStocks(data[stocksDesc])
	news := RecentNews(data[newsDesc], o.now())

	if len(stocks) == 0 && len(news) == 0 {
		slog.Debug("assistant: nothing significant, skipping proactivity", "user", username)
		return nil, nil
	}

	response, err := o.synthesizer.Synthesize(ctx, proactivityPrompt, data)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}
	return &response, nil
}

// AllMorningSummaries runs the morning summary for every known user. One
// user's failure becomes an error string in that user's slot and never
// blocks the remaining users.
func (o *Orchestrator) AllMorningSummaries(ctx context.Context) ([]UserSummary, error) {
	return o.forEachUser(ctx, func(ctx context.Context, username string) (*string, error) {
		response, err := o.MorningSummary(ctx, username)
		if err != nil {
			return nil, err
		}
		return &response, nil
	})
}

// AllProactivitySummaries runs the proactivity evaluation for every known
// user with the same per-user failure isolation. A nil response in a slot
// means that user has nothing noteworthy this hour.
func (o *Orchestrator) AllProactivitySummaries(ctx context.Context) ([]UserSummary, error) {
	return o.forEachUser(ctx, o.ProactivitySummary)
}

// extractFields runs generic extraction over the union of required fields
// and applies the category refinement table for the active use cases.
func (o *Orchestrator) extractFields(ctx context.Context, message string, ids []UseCaseID) (FieldMap, error) {
	required := o.catalog.RequiredFieldsFor(ids)

	extracted, err := o.extractor.Extract(ctx, message, required)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	// Every required field gets a map entry even when the extractor dropped
	// it: no field is ever silently missing downstream.
	fields := make(FieldMap, len(required))
	for name := range required {
		fields[name] = FromExtracted(extracted[name])
	}

	active := make(map[UseCaseID]struct{}, len(ids))
	for _, id := range ids {
		active[id] = struct{}{}
	}
	for _, r := range categoryRefinements {
		if _, ok := active[r.useCase]; !ok {
			continue
		}
		category, err := o.categories.ExtractCategory(ctx, message, r.allowed)
		if err != nil {
			return nil, &ExtractionError{Err: err}
		}
		if category != "" {
			fields[r.field] = Resolved(category)
		}
	}
	return fields, nil
}

// gatherFixed runs the message-free half of the pipeline: a field-map
// skeleton built from the fixed use case list, filled entirely from
// preferences and defaults, then dispatched.
func (o *Orchestrator) gatherFixed(ctx context.Context, ids []UseCaseID, username string) (DispatchResult, error) {
	fields := make(FieldMap)
	for name := range o.catalog.RequiredFieldsFor(ids) {
		fields[name] = Unset()
	}
	if _, err := o.filler.Fill(ctx, fields, username); err != nil {
		return nil, err
	}
	return o.dispatcher.Dispatch(ctx, ids, fields)
}

func (o *Orchestrator) forEachUser(ctx context.Context, run func(ctx context.Context, username string) (*string, error)) ([]UserSummary, error) {
	usernames, err := o.prefs.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	results := make([]UserSummary, 0, len(usernames))
	for _, username := range usernames {
		response, err := run(ctx, username)
		if err != nil {
			slog.Error("assistant: summary failed", "user", username, "error", err)
			msg := fmt.Sprintf("Error: %v", err)
			response = &msg
		}
		results = append(results, UserSummary{UserID: username, Response: response})
	}
	return results, nil
}

func mustDescription(c *Catalog, id UseCaseID) string {
	uc, err := c.ByID(id)
	if err != nil {
		panic(err)
	}
	return uc.Description
}

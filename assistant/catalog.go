package assistant

import (
	"context"
)

// UseCaseID is the stable identifier of a supported use case.
type UseCaseID int

const (
	UseCaseStocks UseCaseID = iota + 1
	UseCaseNews
	UseCaseWeather
	UseCaseCanteen
	UseCaseTimetable
	UseCaseTravelTime
	UseCaseHotelSearch
	UseCaseFlightInfo
)

// Fetcher is the capability invoked for one use case. Arguments are bound
// positionally in the use case's RequiredFields order; each argument is the
// value list of one field (nil when the field resolved to no value).
// A fetcher encodes partial failures in-band in its payload; a returned
// error aborts the whole dispatch.
type Fetcher func(ctx context.Context, args ...[]string) (any, error)

// UseCase describes one supported capability.
type UseCase struct {
	ID             UseCaseID
	Description    string
	RequiredFields []FieldName
}

// useCases is the closed set of supported use cases, in declared order.
// Descriptions are unique: dispatch results are keyed by them.
var useCases = []UseCase{
	{UseCaseStocks, "Stock Market Information", []FieldName{FieldStockName}},
	{UseCaseNews, "Latest News Updates", []FieldName{FieldNewsTopic}},
	{UseCaseWeather, "Weather Forecasts", []FieldName{FieldCity}},
	{UseCaseCanteen, "Canteen Menu", []FieldName{FieldCanteenName}},
	{UseCaseTimetable, "Rapla-Class-Schedule", []FieldName{FieldDate}},
	{UseCaseTravelTime, "Traveltime", []FieldName{FieldTransportMedium, FieldStartLocation, FieldDestLocation}},
	{UseCaseHotelSearch, "Hotel Booking", []FieldName{FieldHotelDestination, FieldCheckInDate, FieldCheckOutDate}},
	{UseCaseFlightInfo, "Flight Information", []FieldName{FieldStartAirport, FieldDestinationAirport, FieldDepartureDate, FieldReturnDate}},
}

// Catalog is the read-only registry of use cases plus the side table binding
// each id to its fetcher capability. Both are fixed at construction.
type Catalog struct {
	order    []UseCase
	byID     map[UseCaseID]UseCase
	fetchers map[UseCaseID]Fetcher
}

// NewCatalog builds the registry with the given fetcher bindings.
// Use cases without a binding are still listed and resolvable; dispatching
// them fails. This keeps tests free to bind only what they exercise.
func NewCatalog(fetchers map[UseCaseID]Fetcher) *Catalog {
	byID := make(map[UseCaseID]UseCase, len(useCases))
	for _, uc := range useCases {
		byID[uc.ID] = uc
	}
	if fetchers == nil {
		fetchers = map[UseCaseID]Fetcher{}
	}
	return &Catalog{order: useCases, byID: byID, fetchers: fetchers}
}

// ByID resolves a use case by id. Unregistered ids fail with
// ErrUseCaseNotFound; a zero-value UseCase is never returned as a fallback.
func (c *Catalog) ByID(id UseCaseID) (UseCase, error) {
	uc, ok := c.byID[id]
	if !ok {
		return UseCase{}, &NotFoundError{ID: id}
	}
	return uc, nil
}

// Contains reports whether id is registered.
func (c *Catalog) Contains(id UseCaseID) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns the use cases in declared order.
func (c *Catalog) All() []UseCase {
	return c.order
}

// RequiredFieldsFor returns the deduplicated union of required fields
// across the listed use cases. Ids not in the registry are skipped; the
// result is independent of input order. This union is exactly the set of
// fields the extractor is asked for.
func (c *Catalog) RequiredFieldsFor(ids []UseCaseID) map[FieldName]struct{} {
	fields := make(map[FieldName]struct{})
	for _, id := range ids {
		uc, ok := c.byID[id]
		if !ok {
			continue
		}
		for _, f := range uc.RequiredFields {
			fields[f] = struct{}{}
		}
	}
	return fields
}

func (c *Catalog) fetcherFor(id UseCaseID) (Fetcher, bool) {
	f, ok := c.fetchers[id]
	return f, ok
}

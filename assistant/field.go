package assistant

// FieldName identifies one unit of information a use case needs.
// The order of a use case's required fields is significant: fetcher
// arguments are bound positionally in that order.
type FieldName string

const (
	FieldStockName          FieldName = "Stock-Name"
	FieldNewsTopic          FieldName = "News-Topic"
	FieldCity               FieldName = "City"
	FieldCanteenName        FieldName = "Canteen-Name"
	FieldDate               FieldName = "Date"
	FieldTransportMedium    FieldName = "Transport-Medium"
	FieldStartLocation      FieldName = "Start-Location"
	FieldDestLocation       FieldName = "Destination-Location"
	FieldHotelDestination   FieldName = "Hotel-Destination"
	FieldCheckInDate        FieldName = "Check-in-Date"
	FieldCheckOutDate       FieldName = "Check-out-Date"
	FieldStartAirport       FieldName = "Start-Airport"
	FieldDestinationAirport FieldName = "Destination-Airport"
	FieldDepartureDate      FieldName = "Departure-Date"
	FieldReturnDate         FieldName = "Return-Date"
)

// FieldState tracks how far a field has come through the pipeline.
type FieldState int

const (
	// StateUnset means the extractor found nothing; the filler still has to run.
	StateUnset FieldState = iota
	// StateResolved means the field carries one or more usable values.
	StateResolved
	// StateNoValue means the filler ran and could not produce a value either.
	// This is distinct from Unset: dispatch proceeds, the fetcher sees no arguments.
	StateNoValue
)

// FieldValue is the three-state value of a single field.
type FieldValue struct {
	State  FieldState
	Values []string
}

// Unset returns a value awaiting the filler.
func Unset() FieldValue {
	return FieldValue{State: StateUnset}
}

// Resolved returns a value carrying the given strings.
func Resolved(values ...string) FieldValue {
	return FieldValue{State: StateResolved, Values: values}
}

// NoValue returns the explicit "nothing available" value.
func NoValue() FieldValue {
	return FieldValue{State: StateNoValue}
}

// FromExtracted converts raw extractor output into a FieldValue.
// An empty list, or a single empty string, is the needs-filling sentinel.
func FromExtracted(values []string) FieldValue {
	if len(values) == 0 || (len(values) == 1 && values[0] == "") {
		return Unset()
	}
	return Resolved(values...)
}

// FieldMap is the per-request mapping from field name to value. It is built
// incrementally across extraction and filling and discarded after the response.
type FieldMap map[FieldName]FieldValue

// Args returns the argument slice bound to a field for fetcher invocation.
// NoValue and Unset fields bind to nil.
func (m FieldMap) Args(name FieldName) []string {
	v, ok := m[name]
	if !ok || v.State != StateResolved {
		return nil
	}
	return v.Values
}

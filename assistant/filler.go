package assistant

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// storeBackedFields maps field names the preference store can answer to the
// field actually queried. Start-Airport and Start-Location fall back to the
// user's home city.
var storeBackedFields = map[FieldName]FieldName{
	FieldStockName:       FieldStockName,
	FieldNewsTopic:       FieldNewsTopic,
	FieldCity:            FieldCity,
	FieldCanteenName:     FieldCanteenName,
	FieldTransportMedium: FieldTransportMedium,
	FieldStartAirport:    FieldCity,
	FieldStartLocation:   FieldCity,
}

// defaultedFields maps field names with a computable default to the function
// producing it. Dates are relative to the filler's clock.
var defaultedFields = map[FieldName]func(now time.Time) string{
	FieldDestLocation:       func(time.Time) string { return "DHBW Stuttgart" },
	FieldHotelDestination:   func(time.Time) string { return "Maldives" },
	FieldDestinationAirport: func(time.Time) string { return "Maldives" },
	FieldDate:               func(now time.Time) string { return now.Format(dateLayout) },
	FieldCheckInDate:        func(now time.Time) string { return now.Format(dateLayout) },
	FieldDepartureDate:      func(now time.Time) string { return now.Format(dateLayout) },
	FieldCheckOutDate:       func(now time.Time) string { return now.AddDate(0, 0, 7).Format(dateLayout) },
	FieldReturnDate:         func(now time.Time) string { return now.AddDate(0, 0, 7).Format(dateLayout) },
}

// DataFiller closes every gap extraction left behind, so the dispatcher
// never sees a required field still in sentinel form.
type DataFiller struct {
	prefs PreferenceStore
	now   func() time.Time
}

// NewDataFiller creates a filler backed by the given preference store.
func NewDataFiller(prefs PreferenceStore) *DataFiller {
	return &DataFiller{prefs: prefs, now: time.Now}
}

// Fill resolves every Unset field in place and returns the map.
//
// Store-backed fields are looked up per user, one query (and one connection)
// each; a non-empty result resolves the field, an empty one marks it
// NoValue. Fields with a computable default get that default. Fields known
// to neither table become NoValue. Fields not in sentinel state pass
// through untouched, which makes Fill idempotent: a second pass finds
// nothing Unset and changes nothing.
func (f *DataFiller) Fill(ctx context.Context, fields FieldMap, username string) (FieldMap, error) {
	for name, value := range fields {
		if value.State != StateUnset {
			continue
		}

		if prefField, ok := storeBackedFields[name]; ok {
			values, err := f.prefs.LookupPreference(ctx, prefField, username)
			if err != nil {
				return nil, fmt.Errorf("lookup %s for %s: %w", name, username, err)
			}
			if len(values) == 0 {
				fields[name] = NoValue()
			} else {
				fields[name] = Resolved(values...)
			}
			continue
		}

		if defaultFn, ok := defaultedFields[name]; ok {
			fields[name] = Resolved(defaultFn(f.now()))
			continue
		}

		fields[name] = NoValue()
	}
	return fields, nil
}

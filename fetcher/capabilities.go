package fetcher

import "github.com/pbhm215/everyday-pda/assistant"

// Capabilities binds every use case id to its fetcher. This is the side
// table the catalog is constructed with; the parameter order of each
// fetcher matches the use case's required-field order.
func (s *Services) Capabilities() map[assistant.UseCaseID]assistant.Fetcher {
	return map[assistant.UseCaseID]assistant.Fetcher{
		assistant.UseCaseStocks:      s.StockPrices,
		assistant.UseCaseNews:        s.News,
		assistant.UseCaseWeather:     s.Weather,
		assistant.UseCaseCanteen:     s.CanteenMenus,
		assistant.UseCaseTimetable:   s.Timetable,
		assistant.UseCaseTravelTime:  s.TravelInfo,
		assistant.UseCaseHotelSearch: s.Hotels,
		assistant.UseCaseFlightInfo:  s.Flights,
	}
}

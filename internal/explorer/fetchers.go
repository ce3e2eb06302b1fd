package explorer

import (
	"context"

	"map_explorer/internal/explorer/state"
	geoclient "map_explorer/internal/geocoding/client"
	poiclient "map_explorer/internal/poi/client"
)

// geocoderAdapter exposes the Nominatim client as a session.Geocoder.
type geocoderAdapter struct {
	client *geoclient.Client
}

func (a geocoderAdapter) Suggest(ctx context.Context, query string) ([]state.Suggestion, error) {
	results, err := a.client.Search(ctx, query, geoclient.DefaultLimit)
	if err != nil {
		return nil, err
	}
	suggestions := make([]state.Suggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, state.Suggestion{
			DisplayName: r.DisplayName,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Address: state.Address{
				Road:        r.Address.Road,
				HouseNumber: r.Address.HouseNumber,
				City:        r.Address.City,
				Postcode:    r.Address.Postcode,
				Country:     r.Address.Country,
			},
		})
	}
	return suggestions, nil
}

// placesAdapter exposes the Overpass client as a session.PlaceFinder.
type placesAdapter struct {
	client *poiclient.Client
}

func (a placesAdapter) Nearby(ctx context.Context, center state.Coordinate, amenity state.AmenityType) ([]state.Place, error) {
	features, err := a.client.Nearby(ctx, center.Lat, center.Lon, string(amenity))
	if err != nil {
		return nil, err
	}
	places := make([]state.Place, 0, len(features))
	for _, f := range features {
		places = append(places, state.Place{
			Name:    f.Name,
			Lat:     f.Lat,
			Lon:     f.Lon,
			Amenity: f.Amenity,
		})
	}
	return places, nil
}

package state

// Event is an input to Reduce: a user action or a fetch completion.
type Event interface {
	// Name identifies the event in logs.
	Name() string
}

// QueryChanged is a keystroke in the search box.
type QueryChanged struct {
	Query string
}

// SuggestionSelected is a click on the suggestion at Index.
type SuggestionSelected struct {
	Index int
}

// AmenityChanged is a dropdown change.
type AmenityChanged struct {
	Amenity AmenityType
}

// SuggestionsLoaded completes FetchSuggestions with Seq.
type SuggestionsLoaded struct {
	Seq         uint64
	Suggestions []Suggestion
}

// SuggestionsFailed reports a failed FetchSuggestions.
type SuggestionsFailed struct {
	Seq uint64
	Err error
}

// PlacesLoaded completes FetchPlaces with Seq.
type PlacesLoaded struct {
	Seq    uint64
	Places []Place
}

// PlacesFailed reports a failed FetchPlaces.
type PlacesFailed struct {
	Seq uint64
	Err error
}

func (QueryChanged) Name() string       { return "query_changed" }
func (SuggestionSelected) Name() string { return "suggestion_selected" }
func (AmenityChanged) Name() string     { return "amenity_changed" }
func (SuggestionsLoaded) Name() string  { return "suggestions_loaded" }
func (SuggestionsFailed) Name() string  { return "suggestions_failed" }
func (PlacesLoaded) Name() string       { return "places_loaded" }
func (PlacesFailed) Name() string       { return "places_failed" }

// Command is a side effect requested by Reduce.
type Command interface {
	Kind() string
}

// FetchSuggestions asks the geocoder for up to five matches of Query.
type FetchSuggestions struct {
	Query string
	Seq   uint64
}

// FetchPlaces asks the feature-query service for Amenity nodes around Center.
type FetchPlaces struct {
	Center  Coordinate
	Amenity AmenityType
	Seq     uint64
}

func (FetchSuggestions) Kind() string { return "fetch_suggestions" }
func (FetchPlaces) Kind() string      { return "fetch_places" }

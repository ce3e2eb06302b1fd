// Package state holds the explorer view state and its pure transition function.
package state

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinQueryLength is the longest query that is cleared instead of looked up.
const MinQueryLength = 2

// ErrSuggestionIndex is returned when a selection points outside the suggestion list.
var ErrSuggestionIndex = errors.New("suggestion index out of range")

// ErrUnknownAmenity is returned for categories outside the fixed set.
var ErrUnknownAmenity = errors.New("unknown amenity")

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Address carries the structured address details returned with a suggestion.
type Address struct {
	Road        string `json:"road,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	City        string `json:"city,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Suggestion is one geocoding candidate, kept in service order.
type Suggestion struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Address     Address `json:"address"`
}

// Coordinate returns the suggestion location.
func (s Suggestion) Coordinate() Coordinate {
	return Coordinate{Lat: s.Lat, Lon: s.Lon}
}

// Place is a nearby point of interest. An empty Name means the feature had no name tag.
type Place struct {
	Name    string  `json:"name,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Amenity string  `json:"amenity"`
}

// State is the complete view state of one explorer session.
type State struct {
	Center         Coordinate   `json:"center"`
	CenterRevision uint64       `json:"centerRevision"`
	Query          string       `json:"query"`
	Suggestions    []Suggestion `json:"suggestions"`
	Marker         *Coordinate  `json:"marker,omitempty"`
	Places         []Place      `json:"places"`
	Amenity        AmenityType  `json:"amenity"`

	// Version counts applied transitions. Views carry it so clients can drop
	// one that arrives after a newer one.
	Version uint64 `json:"version"`

	// DiscardStale drops fetch completions older than the last applied one.
	DiscardStale bool `json:"discardStale"`

	SuggestionSeq     uint64 `json:"suggestionSeq"`
	SuggestionApplied uint64 `json:"suggestionApplied"`
	PlaceSeq          uint64 `json:"placeSeq"`
	PlaceApplied      uint64 `json:"placeApplied"`
}

// New returns the initial state centered on center.
func New(center Coordinate, discardStale bool) State {
	return State{
		Center:       center,
		Suggestions:  []Suggestion{},
		Places:       []Place{},
		DiscardStale: discardStale,
	}
}

// Reduce applies ev to s and returns the next state plus the fetches to run.
// It performs no I/O. On error s is returned unchanged.
func Reduce(s State, ev Event) (State, []Command, error) {
	switch e := ev.(type) {
	case QueryChanged:
		return queryChanged(s, e)
	case SuggestionSelected:
		return suggestionSelected(s, e)
	case AmenityChanged:
		return amenityChanged(s, e)
	case SuggestionsLoaded:
		if s.DiscardStale && e.Seq <= s.SuggestionApplied {
			return s, nil, nil
		}
		s.Suggestions = nonNilSuggestions(e.Suggestions)
		s.SuggestionApplied = max(s.SuggestionApplied, e.Seq)
		return s, nil, nil
	case PlacesLoaded:
		if s.DiscardStale && e.Seq <= s.PlaceApplied {
			return s, nil, nil
		}
		s.Places = nonNilPlaces(e.Places)
		s.PlaceApplied = max(s.PlaceApplied, e.Seq)
		return s, nil, nil
	case SuggestionsFailed, PlacesFailed:
		// The last successful list stays on screen.
		return s, nil, nil
	default:
		return s, nil, fmt.Errorf("unsupported event %T", ev)
	}
}

func queryChanged(s State, e QueryChanged) (State, []Command, error) {
	s.Query = e.Query
	s.SuggestionSeq++
	if utf8.RuneCountInString(e.Query) <= MinQueryLength {
		s.Suggestions = []Suggestion{}
		s.SuggestionApplied = s.SuggestionSeq
		return s, nil, nil
	}
	return s, []Command{FetchSuggestions{Query: e.Query, Seq: s.SuggestionSeq}}, nil
}

func suggestionSelected(s State, e SuggestionSelected) (State, []Command, error) {
	if e.Index < 0 || e.Index >= len(s.Suggestions) {
		return s, nil, fmt.Errorf("%w: %d of %d", ErrSuggestionIndex, e.Index, len(s.Suggestions))
	}
	picked := s.Suggestions[e.Index]
	coord := picked.Coordinate()

	s.Center = coord
	s.CenterRevision++
	s.Marker = &coord
	s.Query = picked.DisplayName
	s.Suggestions = []Suggestion{}
	s.SuggestionSeq++
	s.SuggestionApplied = s.SuggestionSeq

	return s, s.placeFetch(), nil
}

func amenityChanged(s State, e AmenityChanged) (State, []Command, error) {
	if !e.Amenity.Valid() {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownAmenity, e.Amenity)
	}
	s.Amenity = e.Amenity
	if s.Marker == nil {
		return s, nil, nil
	}
	return s, s.placeFetch(), nil
}

// placeFetch issues a fetch at the current center, or nothing when no category is selected.
func (s *State) placeFetch() []Command {
	if s.Amenity == AmenityNone {
		return nil
	}
	s.PlaceSeq++
	return []Command{FetchPlaces{Center: s.Center, Amenity: s.Amenity, Seq: s.PlaceSeq}}
}

func nonNilSuggestions(in []Suggestion) []Suggestion {
	if in == nil {
		return []Suggestion{}
	}
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}

func nonNilPlaces(in []Place) []Place {
	if in == nil {
		return []Place{}
	}
	out := make([]Place, len(in))
	copy(out, in)
	return out
}

// Package render turns explorer state into the view model drawn by the map page.
package render

import (
	"map_explorer/internal/explorer/state"
)

const (
	// Zoom is the level the map resets to whenever the center changes.
	Zoom = 13

	TileURL         = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = `&copy; <a href="http://www.openstreetmap.org/copyright">OpenStreetMap</a>`
)

// MapView drives map.setView on the page. The page re-centers when Revision changes.
type MapView struct {
	Center   state.Coordinate `json:"center"`
	Zoom     int              `json:"zoom"`
	Revision uint64           `json:"revision"`
}

// TileLayer is the base layer with its fixed attribution.
type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Marker is a pin on the map. Popup lines are plain text, one per line.
type Marker struct {
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Icon  Icon     `json:"icon"`
	Popup []string `json:"popup"`
}

// SuggestionItem is one entry of the dismissible suggestion list.
type SuggestionItem struct {
	Index       int    `json:"index"`
	DisplayName string `json:"displayName"`
}

// Option is one entry of the amenity dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// View is everything the page needs to draw one frame.
// Version grows with every transition; the page ignores a view older than the one on screen.
type View struct {
	Version      uint64           `json:"version"`
	Map          MapView          `json:"map"`
	Tiles        TileLayer        `json:"tiles"`
	SearchMarker *Marker          `json:"searchMarker,omitempty"`
	Places       []Marker         `json:"places"`
	Query        string           `json:"query"`
	Suggestions  []SuggestionItem `json:"suggestions"`
	Amenity      string           `json:"amenity"`
	Options      []Option         `json:"options"`
}

// AmenityOptions returns the dropdown entries: the empty selection followed by every category.
func AmenityOptions() []Option {
	opts := make([]Option, 0, len(state.Amenities)+1)
	opts = append(opts, Option{Value: string(state.AmenityNone), Label: state.AmenityNone.Label()})
	for _, a := range state.Amenities {
		opts = append(opts, Option{Value: string(a), Label: a.Label()})
	}
	return opts
}

// Build renders s with icons from theme.
func Build(s state.State, theme *Theme) View {
	v := View{
		Version: s.Version,
		Map: MapView{
			Center:   s.Center,
			Zoom:     Zoom,
			Revision: s.CenterRevision,
		},
		Tiles:       TileLayer{URL: TileURL, Attribution: TileAttribution},
		Places:      make([]Marker, 0, len(s.Places)),
		Query:       s.Query,
		Suggestions: make([]SuggestionItem, 0, len(s.Suggestions)),
		Amenity:     string(s.Amenity),
		Options:     AmenityOptions(),
	}

	if s.Marker != nil {
		v.SearchMarker = &Marker{
			Lat:   s.Marker.Lat,
			Lon:   s.Marker.Lon,
			Icon:  theme.Default(),
			Popup: []string{s.Query},
		}
	}

	for _, p := range s.Places {
		v.Places = append(v.Places, Marker{
			Lat:   p.Lat,
			Lon:   p.Lon,
			Icon:  theme.IconFor(p.Amenity),
			Popup: placePopup(p),
		})
	}

	for i, sg := range s.Suggestions {
		v.Suggestions = append(v.Suggestions, SuggestionItem{Index: i, DisplayName: sg.DisplayName})
	}

	return v
}

func placePopup(p state.Place) []string {
	typeLine := "Type: " + p.Amenity
	if p.Name == "" {
		return []string{typeLine}
	}
	return []string{p.Name, typeLine}
}

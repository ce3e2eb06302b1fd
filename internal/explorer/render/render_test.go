package render

import (
	"strings"
	"testing"

	"map_explorer/internal/explorer/state"
)

func mustTheme(t *testing.T) *Theme {
	t.Helper()
	theme, err := DefaultTheme()
	if err != nil {
		t.Fatalf("DefaultTheme: %v", err)
	}
	return theme
}

func TestPlaceRenderedWithCategoryIcon(t *testing.T) {
	theme := mustTheme(t)
	s := state.New(state.Coordinate{Lat: 28.6139, Lon: 77.209}, false)
	s.Places = []state.Place{{Name: "X", Lat: 1, Lon: 2, Amenity: "cafe"}}

	v := Build(s, theme)

	if len(v.Places) != 1 {
		t.Fatalf("expected one place marker, got %d", len(v.Places))
	}
	m := v.Places[0]
	if m.Lat != 1 || m.Lon != 2 {
		t.Fatalf("unexpected position (%v, %v)", m.Lat, m.Lon)
	}
	if m.Icon.URL != "/static/icons/cafe.svg" {
		t.Fatalf("expected cafe icon, got %q", m.Icon.URL)
	}
	if strings.Join(m.Popup, "|") != "X|Type: cafe" {
		t.Fatalf("unexpected popup %v", m.Popup)
	}
}

func TestUnknownCategoriesFallBackToDefault(t *testing.T) {
	theme := mustTheme(t)
	for _, amenity := range []string{"mall", "", "fountain", "CAFE"} {
		if got := theme.IconFor(amenity); got != theme.Default() {
			t.Fatalf("amenity %q: expected default icon, got %+v", amenity, got)
		}
	}
}

func TestThemeMatchesCategoryTable(t *testing.T) {
	theme := mustTheme(t)
	want := map[string]string{
		"school":     "/static/icons/school.svg",
		"hospital":   "/static/icons/healthcare.svg",
		"restaurant": "/static/icons/restaurant.svg",
		"hotel":      "/static/icons/hotel.svg",
		"atm":        "/static/icons/atm.svg",
		"bank":       "/static/icons/marker.svg",
		"library":    "/static/icons/library.svg",
		"cafe":       "/static/icons/cafe.svg",
		"parking":    "/static/icons/parking.svg",
		"cinema":     "/static/icons/cinema.svg",
		"pharmacy":   "/static/icons/pharmacy.svg",
		"mall":       "/static/icons/marker.svg",
	}
	for amenity, url := range want {
		icon := theme.IconFor(amenity)
		if icon.URL != url {
			t.Fatalf("%s: expected %q, got %q", amenity, url, icon.URL)
		}
		if icon.Size != [2]int{40, 40} {
			t.Fatalf("%s: expected 40x40, got %v", amenity, icon.Size)
		}
	}
}

func TestSearchMarkerUsesDefaultIconAndQueryPopup(t *testing.T) {
	theme := mustTheme(t)
	s := state.New(state.Coordinate{}, false)
	s.Query = "Example Place"
	s.Marker = &state.Coordinate{Lat: 28.6, Lon: 77.2}
	s.CenterRevision = 4

	v := Build(s, theme)
	if v.SearchMarker == nil {
		t.Fatal("expected a search marker")
	}
	if v.SearchMarker.Icon != theme.Default() || v.SearchMarker.Popup[0] != "Example Place" {
		t.Fatalf("unexpected search marker %+v", v.SearchMarker)
	}
	if v.Map.Zoom != 13 || v.Map.Revision != 4 {
		t.Fatalf("unexpected map view %+v", v.Map)
	}
	if v.Tiles.URL != TileURL || !strings.Contains(v.Tiles.Attribution, "OpenStreetMap") {
		t.Fatalf("unexpected tile layer %+v", v.Tiles)
	}
}

func TestViewWithoutMarkerOrPlaces(t *testing.T) {
	v := Build(state.New(state.Coordinate{Lat: 1, Lon: 1}, false), mustTheme(t))
	if v.SearchMarker != nil {
		t.Fatal("expected no search marker before a selection")
	}
	if v.Places == nil || v.Suggestions == nil {
		t.Fatal("expected empty, non-nil collections")
	}
	if len(v.Options) != 13 || v.Options[0].Value != "" || v.Options[7].Label != "ATM" {
		t.Fatalf("unexpected options %+v", v.Options)
	}
}

func TestUnnamedPlacePopup(t *testing.T) {
	s := state.New(state.Coordinate{}, false)
	s.Places = []state.Place{{Lat: 1, Lon: 1, Amenity: "parking"}}
	v := Build(s, mustTheme(t))
	if len(v.Places[0].Popup) != 1 || v.Places[0].Popup[0] != "Type: parking" {
		t.Fatalf("unexpected popup %v", v.Places[0].Popup)
	}
}

func TestParseThemeRejectsInvalidThemes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing default", "size: [40, 40]\nicons: {}\n"},
		{"unknown amenity", "size: [40, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\nicons:\n  casino: {file: casino, color: \"#000000\", glyph: c}\n"},
		{"bad color", "size: [40, 40]\ndefault: {file: marker, color: red, glyph: x}\n"},
		{"zero size", "size: [0, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\n"},
		{"unknown field", "size: [40, 40]\nshape: round\ndefault: {file: marker, color: \"#000000\", glyph: x}\n"},
		{"path in file name", "size: [40, 40]\ndefault: {file: ../etc, color: \"#000000\", glyph: x}\n"},
		{"look on inherited file", "size: [40, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\nicons:\n  bank: {file: marker, color: \"#111111\"}\n"},
		{"glyph on inherited file", "size: [40, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\nicons:\n  bank: {file: marker, glyph: b}\n"},
		{"conflicting file", "size: [40, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\nicons:\n  cafe: {file: food, color: \"#111111\", glyph: c}\n  restaurant: {file: food, color: \"#222222\", glyph: r}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTheme([]byte(tt.yaml)); err == nil {
				t.Fatal("expected theme to be rejected")
			}
		})
	}
}

func TestSVGRendersKnownFiles(t *testing.T) {
	theme := mustTheme(t)
	svg, ok := theme.SVG("cafe")
	if !ok {
		t.Fatal("expected cafe svg")
	}
	if !strings.HasPrefix(string(svg), "<svg") || !strings.Contains(string(svg), "#92400e") {
		t.Fatalf("unexpected svg %s", svg)
	}
	if _, ok := theme.SVG("marker"); !ok {
		t.Fatal("expected default marker svg")
	}
	if _, ok := theme.SVG("mall"); ok {
		t.Fatal("expected no svg for a category without an icon")
	}
}

func TestViewCarriesStateVersion(t *testing.T) {
	s := state.New(state.Coordinate{Lat: 1, Lon: 1}, false)
	s.Version = 7
	if v := Build(s, mustTheme(t)); v.Version != 7 {
		t.Fatalf("expected view version 7, got %d", v.Version)
	}
}

func TestInheritingEntryUsesDefaultIcon(t *testing.T) {
	theme, err := ParseTheme([]byte("size: [40, 40]\ndefault: {file: marker, color: \"#000000\", glyph: x}\nicons:\n  bank: {file: marker}\n"))
	if err != nil {
		t.Fatalf("ParseTheme: %v", err)
	}
	if theme.IconFor("bank") != theme.Default() {
		t.Fatalf("expected bank to share the default icon, got %+v", theme.IconFor("bank"))
	}
}

package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"os"
	"regexp"
	"sort"
	"text/template"

	"map_explorer/internal/explorer/state"

	"gopkg.in/yaml.v3"
)

//go:embed icons.yaml
var defaultThemeYAML []byte

// IconBasePath is where the icon handler serves generated marker images.
const IconBasePath = "/static/icons/"

var (
	fileNamePattern = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type iconSpec struct {
	File  string `yaml:"file"`
	Color string `yaml:"color"`
	Glyph string `yaml:"glyph"`
}

type themeFile struct {
	Size    [2]int              `yaml:"size"`
	Default iconSpec            `yaml:"default"`
	Icons   map[string]iconSpec `yaml:"icons"`
}

// Icon is a marker image reference as handed to the map widget.
type Icon struct {
	URL    string `json:"url"`
	Size   [2]int `json:"size"`
	Anchor [2]int `json:"anchor"`
}

type iconResource struct {
	Color string
	Glyph string
}

// Theme maps amenity categories to marker icons with a default fallback.
type Theme struct {
	size      [2]int
	fallback  Icon
	byAmenity map[state.AmenityType]Icon
	resources map[string]iconResource
}

// DefaultTheme loads the embedded icon theme.
func DefaultTheme() (*Theme, error) {
	return ParseTheme(defaultThemeYAML)
}

// LoadTheme reads a theme from path, or the embedded theme when path is empty.
func LoadTheme(path string) (*Theme, error) {
	if path == "" {
		return DefaultTheme()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon theme: %w", err)
	}
	return ParseTheme(data)
}

// ParseTheme decodes and validates a YAML icon theme.
func ParseTheme(data []byte) (*Theme, error) {
	var tf themeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode icon theme: %w", err)
	}

	if tf.Size[0] <= 0 || tf.Size[1] <= 0 {
		return nil, fmt.Errorf("icon theme: size must be positive, got %v", tf.Size)
	}
	if tf.Default.File == "" {
		return nil, fmt.Errorf("icon theme: default icon is required")
	}
	if err := validateSpec("default", tf.Default, true); err != nil {
		return nil, err
	}

	t := &Theme{
		size:      tf.Size,
		byAmenity: make(map[state.AmenityType]Icon, len(tf.Icons)),
		resources: map[string]iconResource{
			tf.Default.File: {Color: tf.Default.Color, Glyph: tf.Default.Glyph},
		},
	}
	t.fallback = t.icon(tf.Default.File)

	keys := make([]string, 0, len(tf.Icons))
	for key := range tf.Icons {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		amenity := state.AmenityType(key)
		if amenity == state.AmenityNone || !amenity.Valid() {
			return nil, fmt.Errorf("icon theme: unknown amenity %q", key)
		}
		spec := tf.Icons[key]
		inherits := spec.File == tf.Default.File
		if err := validateSpec(key, spec, !inherits); err != nil {
			return nil, err
		}
		if !inherits {
			if existing, ok := t.resources[spec.File]; ok && existing != (iconResource{Color: spec.Color, Glyph: spec.Glyph}) {
				return nil, fmt.Errorf("icon theme: file %q defined twice with different looks", spec.File)
			}
			t.resources[spec.File] = iconResource{Color: spec.Color, Glyph: spec.Glyph}
		}
		t.byAmenity[amenity] = t.icon(spec.File)
	}

	return t, nil
}

func validateSpec(key string, spec iconSpec, needsLook bool) error {
	if !fileNamePattern.MatchString(spec.File) {
		return fmt.Errorf("icon theme: %s has invalid file name %q", key, spec.File)
	}
	if !needsLook {
		if spec.Color != "" || spec.Glyph != "" {
			return fmt.Errorf("icon theme: %s reuses file %q and cannot set color or glyph", key, spec.File)
		}
		return nil
	}
	if !colorPattern.MatchString(spec.Color) {
		return fmt.Errorf("icon theme: %s has invalid color %q", key, spec.Color)
	}
	if spec.Glyph == "" || len([]rune(spec.Glyph)) > 2 {
		return fmt.Errorf("icon theme: %s glyph must be 1 or 2 characters", key)
	}
	return nil
}

func (t *Theme) icon(file string) Icon {
	return Icon{
		URL:    IconBasePath + file + ".svg",
		Size:   t.size,
		Anchor: [2]int{t.size[0] / 2, t.size[1]},
	}
}

// Default is the icon used for the search marker and unrecognised categories.
func (t *Theme) Default() Icon {
	return t.fallback
}

// IconFor returns the icon for a raw amenity tag value, falling back to Default.
func (t *Theme) IconFor(amenity string) Icon {
	if icon, ok := t.byAmenity[state.AmenityType(amenity)]; ok {
		return icon
	}
	return t.fallback
}

var svgTemplate = template.Must(template.New("marker").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{.W}}" height="{{.H}}" viewBox="0 0 40 40">` +
		`<path d="M20 39C20 39 5 23.5 5 15a15 15 0 0 1 30 0c0 8.5-15 24-15 24z" fill="{{.Color}}" stroke="#ffffff" stroke-width="2"/>` +
		`<text x="20" y="20" font-family="sans-serif" font-size="{{.FontSize}}" font-weight="bold" fill="#ffffff" text-anchor="middle">{{.Glyph}}</text>` +
		`</svg>`))

// SVG renders the marker image for a file name such as "cafe" or "marker".
func (t *Theme) SVG(file string) ([]byte, bool) {
	res, ok := t.resources[file]
	if !ok {
		return nil, false
	}
	fontSize := 14
	if len([]rune(res.Glyph)) > 1 {
		fontSize = 11
	}
	var buf bytes.Buffer
	err := svgTemplate.Execute(&buf, struct {
		W, H     int
		Color    string
		Glyph    string
		FontSize int
	}{t.size[0], t.size[1], res.Color, html.EscapeString(res.Glyph), fontSize})
	if err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

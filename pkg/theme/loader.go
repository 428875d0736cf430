package theme

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/fasten/pkg/graphics"
)

// File is the YAML representation of a theme.
//
//	name: ocean
//	brightness: dark
//	base: dark
//	feels:
//	  default:
//	    backgroundColor: "#102030"
//	    opacity: 1
//	    spacing: 12px
type File struct {
	Name       string                       `yaml:"name"`
	Brightness string                       `yaml:"brightness,omitempty"`
	Base       string                       `yaml:"base,omitempty"`
	Feels      map[string]map[string]string `yaml:"feels"`
}

type valueKind int

const (
	kindColor valueKind = iota
	kindNumber
	kindLength
)

var lookKinds = map[Look]valueKind{
	BackgroundColor: kindColor,
	SurfaceColor:    kindColor,
	AccentColor:     kindColor,
	OnAccentColor:   kindColor,
	TextColor:       kindColor,
	BorderColor:     kindColor,
	Opacity:         kindNumber,
	CornerRadius:    kindNumber,
	Spacing:         kindLength,
}

// Load parses a YAML theme. When the file names a base ("light" or "dark",
// or any theme in the default registry) the base is cloned and the file's
// entries override it.
func Load(data []byte) (*Theme, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	return f.Build()
}

// LoadFile reads and parses a YAML theme file.
func LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Build converts the file into a Theme.
func (f *File) Build() (*Theme, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil, fmt.Errorf("theme has no name")
	}

	var t *Theme
	if base := strings.TrimSpace(f.Base); base != "" {
		bt, ok := DefaultRegistry().Get(base)
		if !ok {
			return nil, fmt.Errorf("unknown base theme %q", base)
		}
		t = bt.Clone()
		t.Name = name
	} else {
		t = NewTheme(name, BrightnessLight)
	}

	switch strings.ToLower(strings.TrimSpace(f.Brightness)) {
	case "":
	case "light":
		t.Brightness = BrightnessLight
	case "dark":
		t.Brightness = BrightnessDark
	default:
		return nil, fmt.Errorf("invalid brightness %q", f.Brightness)
	}

	for feel, looks := range f.Feels {
		for look, raw := range looks {
			v, err := parseValue(Look(look), raw)
			if err != nil {
				return nil, fmt.Errorf("feels.%s.%s: %w", feel, look, err)
			}
			t.Set(Feel(feel), Look(look), v)
		}
	}
	return t, nil
}

func parseValue(look Look, raw string) (any, error) {
	kind, known := lookKinds[look]
	if !known {
		// Unknown looks are typed by their text.
		if c, err := graphics.ParseColor(raw); err == nil {
			return c, nil
		}
		if l, err := graphics.ParseLength(raw); err == nil {
			if l.Unit == graphics.UnitPx && !strings.HasSuffix(strings.TrimSpace(raw), "px") {
				return l.Value, nil
			}
			return l, nil
		}
		return raw, nil
	}
	switch kind {
	case kindColor:
		return graphics.ParseColor(raw)
	case kindLength:
		return graphics.ParseLength(raw)
	default:
		l, err := graphics.ParseLength(raw)
		if err != nil {
			return nil, err
		}
		if l.Unit != graphics.UnitPx {
			return nil, fmt.Errorf("%q must be a plain number", raw)
		}
		return l.Value, nil
	}
}

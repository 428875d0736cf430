package theme_test

import (
	"fmt"

	"github.com/go-drift/fasten/pkg/graphics"
	"github.com/go-drift/fasten/pkg/theme"
)

// This example resolves the same look under two moods. Later feels
// overlay earlier ones.
func ExampleTheme_Get() {
	th := theme.DefaultLight()

	bg, _ := th.Get(theme.BackgroundColor, theme.Mood(theme.Default))
	selected, _ := th.Get(theme.BackgroundColor, theme.Mood(theme.Default, theme.Selected))
	fmt.Println(bg)
	fmt.Println(selected)
	// Output:
	// #fffffbfe
	// #ffe8def8
}

// This example blends a partially weighted feel into the base value.
func ExampleMoodVector_With() {
	th := theme.NewTheme("demo", theme.BrightnessLight).
		Set(theme.Default, theme.Opacity, 1.0).
		Set(theme.Disabled, theme.Opacity, 0.5)

	mood := theme.Mood(theme.Default).With(theme.Disabled, 0.5)
	v, _ := th.Get(theme.Opacity, mood)
	fmt.Println(v)
	// Output: 0.75
}

// This example loads a theme that overrides the dark defaults.
func ExampleLoad() {
	th, err := theme.Load([]byte(`
name: ocean
base: dark
feels:
  default:
    accentColor: "#00897b"
    spacing: 12px
`))
	if err != nil {
		fmt.Println(err)
		return
	}
	accent, _ := th.Get(theme.AccentColor, theme.DefaultMood)
	spacing, _ := th.Get(theme.Spacing, theme.DefaultMood)
	fmt.Println(th.Name, th.Brightness)
	fmt.Println(accent.(graphics.Color), spacing)
	// Output:
	// ocean dark
	// #ff00897b 12px
}

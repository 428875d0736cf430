// Package config loads the optional fasten.yaml runtime configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/theme"
)

// FileName is the name of the configuration file looked up in a project root.
const FileName = "fasten.yaml"

// Defaults applied by Resolve.
const (
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultDuration      = 250 * time.Millisecond
	DefaultEasing        = "ease"
	DefaultThemeName     = "light"
)

// Config represents the optional fasten.yaml configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Theme     ThemeConfig     `yaml:"theme"`
	Log       LogConfig       `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// SchedulerConfig contains frame loop settings.
type SchedulerConfig struct {
	FrameInterval string       `yaml:"frame_interval,omitempty"`
	DefaultTiming TimingConfig `yaml:"default_timing"`
	TraceSamples  int          `yaml:"trace_samples,omitempty"`
}

// TimingConfig describes an animation timing.
type TimingConfig struct {
	Duration string `yaml:"duration,omitempty"`
	Easing   string `yaml:"easing,omitempty"`
}

// ThemeConfig selects the startup theme and mood.
type ThemeConfig struct {
	File string     `yaml:"file,omitempty"`
	Name string     `yaml:"name,omitempty"`
	Mood MoodConfig `yaml:"mood,omitempty"`
	// Blend is the color space feels are blended in: srgb, linear or lab.
	Blend string `yaml:"blend,omitempty"`
}

// MoodConfig is a feel-to-weight mapping that keeps the order of the file,
// since later feels overlay earlier ones.
type MoodConfig []theme.MoodComponent

// UnmarshalYAML decodes a mapping of feel names to weights.
func (m *MoodConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mood must be a mapping of feel to weight", value.Line)
	}
	out := make(MoodConfig, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var w float64
		if err := val.Decode(&w); err != nil {
			return fmt.Errorf("line %d: weight of %s: %w", val.Line, key.Value, err)
		}
		out = append(out, theme.MoodComponent{Feel: theme.Feel(key.Value), Weight: w})
	}
	*m = out
	return nil
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	ModulePath    string
	AppName       string
	FrameInterval time.Duration
	Duration      time.Duration
	EasingName    string
	TraceSamples  int
	ThemeFile     string
	ThemeName     string
	ColorBlend    string
	Mood          theme.MoodVector
	LogLevel      slog.Level
	Verbose       bool
}

// LoadOptional reads fasten.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError(fmt.Errorf("failed to parse %s: %w", FileName, err))
	}

	return &cfg, nil
}

// Resolve loads fasten.yaml (if present) and resolves defaults. The module
// path is read from go.mod when dir contains one.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       strings.TrimSpace(cfg.App.Name),
		FrameInterval: DefaultFrameInterval,
		Duration:      DefaultDuration,
		EasingName:    DefaultEasing,
		TraceSamples:  cfg.Scheduler.TraceSamples,
		ThemeName:     strings.TrimSpace(cfg.Theme.Name),
		Verbose:       cfg.Log.Verbose,
	}
	if r.AppName == "" {
		r.AppName = defaultAppName(modulePath, dir)
	}
	if r.ThemeName == "" {
		r.ThemeName = DefaultThemeName
	}
	if f := strings.TrimSpace(cfg.Theme.File); f != "" {
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		r.ThemeFile = f
	}

	if v := cfg.Scheduler.FrameInterval; v != "" {
		if r.FrameInterval, err = parsePositiveDuration("scheduler.frame_interval", v); err != nil {
			return nil, err
		}
	}
	if v := cfg.Scheduler.DefaultTiming.Duration; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, configError(fmt.Errorf("scheduler.default_timing.duration: invalid duration %q", v))
		}
		r.Duration = d
	}
	if v := strings.TrimSpace(cfg.Scheduler.DefaultTiming.Easing); v != "" {
		if _, ok := animation.EasingByName(v); !ok {
			return nil, configError(fmt.Errorf("scheduler.default_timing.easing: unknown easing %q (have %s)",
				v, strings.Join(animation.EasingNames(), ", ")))
		}
		r.EasingName = v
	}
	if r.TraceSamples < 0 {
		return nil, configError(fmt.Errorf("scheduler.trace_samples must not be negative (got %d)", r.TraceSamples))
	}

	if v := strings.TrimSpace(cfg.Theme.Blend); v != "" {
		if _, ok := animation.ColorBlendByName(v); !ok {
			return nil, configError(fmt.Errorf("theme.blend: unknown color blend %q (have %s)",
				v, strings.Join(animation.ColorBlendNames(), ", ")))
		}
		r.ColorBlend = v
	}

	for _, c := range cfg.Theme.Mood {
		if c.Weight < 0 || c.Weight > 1 {
			return nil, configError(fmt.Errorf("theme.mood: weight of %s must be within [0, 1] (got %v)", c.Feel, c.Weight))
		}
		r.Mood = r.Mood.With(c.Feel, c.Weight)
	}

	if v := strings.TrimSpace(cfg.Log.Level); v != "" {
		if err := r.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, configError(fmt.Errorf("log.level: %w", err))
		}
	}

	return r, nil
}

// Timing returns the default animation timing.
func (r *Resolved) Timing() animation.Timing {
	easing, ok := animation.EasingByName(r.EasingName)
	if !ok {
		easing = animation.Linear
	}
	return animation.TimingOf(r.Duration, easing)
}

// Theme returns the startup theme: the theme file when one is configured,
// otherwise the registry theme named ThemeName, prepared by Blend.
func (r *Resolved) Theme() (*theme.Theme, error) {
	var th *theme.Theme
	if r.ThemeFile != "" {
		loaded, err := theme.LoadFile(r.ThemeFile)
		if err != nil {
			return nil, configError(fmt.Errorf("theme.file: %w", err))
		}
		th = loaded
	} else {
		named, ok := theme.DefaultRegistry().Get(r.ThemeName)
		if !ok {
			return nil, configError(fmt.Errorf("theme.name: unknown theme %q (have %s)",
				r.ThemeName, strings.Join(theme.DefaultRegistry().Names(), ", ")))
		}
		th = named
	}
	return r.Blend(th), nil
}

// Blend returns th set up to blend colors in ColorBlend. Without a
// configured blend th is returned as is.
func (r *Resolved) Blend(th *theme.Theme) *theme.Theme {
	lerp, ok := animation.ColorBlendByName(r.ColorBlend)
	if !ok || th == nil {
		return th
	}
	reg := animation.NewRegistry()
	animation.Register(reg, lerp)
	// Registry themes are shared; blend on a copy.
	return th.Clone().WithRegistry(reg)
}

// FindProjectRoot walks up from the current directory to find go.mod or
// fasten.yaml.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found", FileName)
		}
		dir = parent
	}
}

func configError(err error) error {
	return &errors.FastenError{Op: "config.Resolve", Kind: errors.KindConfig, Err: err}
}

func parsePositiveDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, configError(fmt.Errorf("%s: invalid duration %q", key, value))
	}
	return d, nil
}

// modulePath returns the module path from dir/go.mod, or "" when there is
// no go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "fasten_app"
	}
	return base
}

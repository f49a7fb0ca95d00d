package dto

import "strings"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeCalm   Theme = "calm"
	ThemeSystem Theme = "system"
)

// Themes lists every accepted theme value.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeCalm, ThemeSystem}

// ThemeKey is the field of the preference document holding the theme.
const ThemeKey = "theme"

type ThemeInput struct {
	Theme string `json:"theme" binding:"required"`
}

type ThemeResult struct {
	ID              uint64         `json:"id"`
	ThemePreference map[string]any `json:"theme_preference"`
}

func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ResolveTheme maps any stored value onto the enumerated set; anything
// unknown or missing reads as ThemeSystem.
func ResolveTheme(v any) Theme {
	s, ok := v.(string)
	if !ok {
		return ThemeSystem
	}
	if t, ok := ParseTheme(s); ok {
		return t
	}
	return ThemeSystem
}

// ResolvePreference returns a copy of doc whose theme field is always resolved.
func ResolvePreference(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[ThemeKey] = string(ResolveTheme(doc[ThemeKey]))
	return out
}

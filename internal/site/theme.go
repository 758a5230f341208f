package site

import (
	"fmt"
	"strings"
)

// ColorToken is a named theme colour
type ColorToken struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Theme is the styling build configuration
type Theme struct {
	Content []string     `json:"content"`
	Colors  []ColorToken `json:"colors"`
}

// DefaultTheme returns the HomeSwift palette. Order is stable so the
// rendered stylesheet does not churn.
func DefaultTheme() Theme {
	return Theme{
		Content: []string{
			"./src/pages/**/*.{js,ts,jsx,tsx,mdx}",
			"./src/components/**/*.{js,ts,jsx,tsx,mdx}",
			"./src/app/**/*.{js,ts,jsx,tsx,mdx}",
		},
		Colors: []ColorToken{
			{"primary", "#1A531A"},
			{"secondary", "#90B890"},
			{"accent", "#1A531A"},
			{"success", "#10b981"},
			{"danger", "#ef4444"},
			{"warning", "#f59e0b"},
			{"info", "#1A531A"},
			{"light", "#f8fafc"},
			{"dark", "#1A531A"},
		},
	}
}

// Color returns the value of a named token
func (t Theme) Color(name string) (string, bool) {
	for _, c := range t.Colors {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// ColorMap returns the tokens keyed by name
func (t Theme) ColorMap() map[string]string {
	m := make(map[string]string, len(t.Colors))
	for _, c := range t.Colors {
		m[c.Name] = c.Value
	}
	return m
}

// CSS renders the palette as custom properties on :root
func (t Theme) CSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, c := range t.Colors {
		fmt.Fprintf(&b, "  --color-%s: %s;\n", c.Name, c.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

package layouts

import (
	"fmt"
	"strings"
)

// Theme holds the club colours used by the page chrome.
type Theme struct {
	Primary string
	Accent  string
}

func DefaultTheme() Theme {
	return Theme{Primary: "#1f5f3f", Accent: "#f2b705"}
}

func getThemeCssVars(theme Theme) string {
	defaultTheme := DefaultTheme()
	primary := themeColorOrDefault(theme.Primary, defaultTheme.Primary)
	accent := themeColorOrDefault(theme.Accent, defaultTheme.Accent)

	return fmt.Sprintf(":root{--theme-primary:%s;--theme-accent:%s;}", primary, accent)
}

func themeColorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if !IsHexColor(trimmed) {
		return fallback
	}
	return trimmed
}

// IsHexColor reports whether value is a #rgb or #rrggbb colour.
func IsHexColor(value string) bool {
	if len(value) != 4 && len(value) != 7 {
		return false
	}
	if value[0] != '#' {
		return false
	}
	for _, c := range value[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

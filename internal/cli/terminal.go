package cli

import "os"

// UseColor decides whether output to f should carry ANSI colour.
// NO_COLOR in the environment disables colour in auto mode.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return f != nil && IsTerminal(f.Fd())
}

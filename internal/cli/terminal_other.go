//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!dragonfly

package cli

// IsTerminal always reports false where terminal detection is unavailable
func IsTerminal(fd uintptr) bool { return false }

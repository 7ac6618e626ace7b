// Package pathutils resolves user supplied filesystem paths.
package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant                 = "~"
	homeDirectoryLookupTemplateConstant = "%w: %s"
)

// ErrHomeDirectoryUnavailable indicates a tilde path could not be expanded.
var ErrHomeDirectoryUnavailable = errors.New("home directory unavailable")

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts leading tilde shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves "~" and "~/..." against the home directory. Paths such as
// "~other/x" are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || !hasHomePrefix(trimmedPath) {
		return trimmedPath, nil
	}

	homeDirectory, lookupError := expander.homeDirectoryProvider()
	if lookupError != nil {
		return "", fmt.Errorf(homeDirectoryLookupTemplateConstant, ErrHomeDirectoryUnavailable, lookupError.Error())
	}
	if len(homeDirectory) == 0 {
		return "", ErrHomeDirectoryUnavailable
	}

	relativePath := strings.TrimLeft(strings.TrimPrefix(trimmedPath, tildeSymbolConstant), `/\`)
	if len(relativePath) == 0 {
		return homeDirectory, nil
	}
	return filepath.Join(homeDirectory, relativePath), nil
}

func hasHomePrefix(candidatePath string) bool {
	if candidatePath == tildeSymbolConstant {
		return true
	}
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return false
	}
	separator := candidatePath[len(tildeSymbolConstant)]
	return separator == '/' || separator == os.PathSeparator
}

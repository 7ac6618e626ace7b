package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	shellNoneConstant                = "none"
	shellBashConstant                = "bash"
	shellZshConstant                 = "zsh"
	unsupportedShellTemplateConstant = "unsupported shell %q (expected none, bash, or zsh)"
	groupOpenConstant                = "["
	groupCloseConstant               = "]"
	divergenceSeparatorConstant      = " "
	changesSeparatorConstant         = "|"
	upstreamSeparatorConstant        = ":"
	bashInvisibleStartConstant       = "\x01"
	bashInvisibleEndConstant         = "\x02"
	zshInvisibleStartConstant        = "%{"
	zshInvisibleEndConstant          = "%}"
	zshPercentConstant               = "%"
	zshEscapedPercentConstant        = "%%"
	escapeSequenceExpressionConstant = "\x1b\\[[0-9;]*m"
)

var escapeSequencePattern = regexp.MustCompile(escapeSequenceExpressionConstant)

// ShellKind names the shell whose prompt receives the rendered segment.
type ShellKind string

// Supported shells.
const (
	ShellNone ShellKind = shellNoneConstant
	ShellBash ShellKind = shellBashConstant
	ShellZsh  ShellKind = shellZshConstant
)

// UnmarshalText validates the textual shell name.
func (shell *ShellKind) UnmarshalText(text []byte) error {
	candidate := ShellKind(strings.ToLower(strings.TrimSpace(string(text))))
	switch candidate {
	case ShellNone, ShellBash, ShellZsh:
		*shell = candidate
		return nil
	case "":
		*shell = ShellNone
		return nil
	default:
		return fmt.Errorf(unsupportedShellTemplateConstant, string(text))
	}
}

// MarshalText returns the textual shell name.
func (shell ShellKind) MarshalText() ([]byte, error) {
	return []byte(shell), nil
}

// Segments are the four resolved prompt strings. An empty string means absent.
type Segments struct {
	Position   string
	Divergence string
	Upstream   string
	Changes    string
}

// Renderer joins Segments into `[position divergence|changes]:upstream`.
type Renderer struct {
	shell ShellKind
}

// NewRenderer constructs a Renderer for the shell.
func NewRenderer(shell ShellKind) Renderer {
	return Renderer{shell: shell}
}

// Render omits every segment whose string is empty, and the bracket group when all of its parts are.
func (renderer Renderer) Render(segments Segments) string {
	var group strings.Builder
	group.WriteString(renderer.escape(segments.Position))
	if len(segments.Divergence) > 0 {
		if len(segments.Position) > 0 {
			group.WriteString(divergenceSeparatorConstant)
		}
		group.WriteString(segments.Divergence)
	}
	if len(segments.Changes) > 0 {
		group.WriteString(changesSeparatorConstant)
		group.WriteString(renderer.wrapEscapeSequences(renderer.escape(segments.Changes)))
	}

	var rendered strings.Builder
	if group.Len() > 0 {
		rendered.WriteString(groupOpenConstant)
		rendered.WriteString(group.String())
		rendered.WriteString(groupCloseConstant)
	}
	if len(segments.Upstream) > 0 {
		rendered.WriteString(upstreamSeparatorConstant)
		rendered.WriteString(renderer.escape(segments.Upstream))
	}
	return rendered.String()
}

func (renderer Renderer) escape(text string) string {
	if renderer.shell == ShellZsh {
		return strings.ReplaceAll(text, zshPercentConstant, zshEscapedPercentConstant)
	}
	return text
}

func (renderer Renderer) wrapEscapeSequences(text string) string {
	switch renderer.shell {
	case ShellBash:
		return escapeSequencePattern.ReplaceAllStringFunc(text, func(sequence string) string {
			return bashInvisibleStartConstant + sequence + bashInvisibleEndConstant
		})
	case ShellZsh:
		return escapeSequencePattern.ReplaceAllStringFunc(text, func(sequence string) string {
			return zshInvisibleStartConstant + sequence + zshInvisibleEndConstant
		})
	default:
		return text
	}
}

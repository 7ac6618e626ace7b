package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	colorModeAlwaysConstant              = "always"
	colorModeNeverConstant               = "never"
	colorModeAutoConstant                = "auto"
	unsupportedColorModeTemplateConstant = "unsupported color mode %q (expected always, never, or auto)"
	defaultIndexModifiedGlyphConstant    = "●"
	defaultIndexNewGlyphConstant         = "✚"
	defaultIndexDeletedGlyphConstant     = "✖"
	defaultConflictedGlyphConstant       = "≠"
	defaultWorktreeModifiedGlyphConstant = "±"
	defaultWorktreeNewGlyphConstant      = "…"
	defaultWorktreeDeletedGlyphConstant  = "−"
	defaultCleanGlyphConstant            = "✔"
)

// ChangeCategory is one column of the change summary.
type ChangeCategory int

// Change categories in display order.
const (
	CategoryIndexModified ChangeCategory = iota
	CategoryIndexNew
	CategoryIndexDeleted
	CategoryConflicted
	CategoryWorktreeModified
	CategoryWorktreeNew
	CategoryWorktreeDeleted
)

var orderedCategories = []struct {
	category ChangeCategory
	flag     gitrepo.StatusFlag
}{
	{category: CategoryIndexModified, flag: gitrepo.StatusIndexModified},
	{category: CategoryIndexNew, flag: gitrepo.StatusIndexNew},
	{category: CategoryIndexDeleted, flag: gitrepo.StatusIndexDeleted},
	{category: CategoryConflicted, flag: gitrepo.StatusConflicted},
	{category: CategoryWorktreeModified, flag: gitrepo.StatusWorktreeModified},
	{category: CategoryWorktreeNew, flag: gitrepo.StatusWorktreeNew},
	{category: CategoryWorktreeDeleted, flag: gitrepo.StatusWorktreeDeleted},
}

// ChangeTally counts the paths in one category.
type ChangeTally struct {
	Category ChangeCategory
	Count    int
}

// ChangeSummary lists non-zero tallies in category order. An empty summary means a clean tree.
type ChangeSummary []ChangeTally

// IsClean reports whether no category has changes.
func (summary ChangeSummary) IsClean() bool {
	return len(summary) == 0
}

// Count returns the tally of one category.
func (summary ChangeSummary) Count(category ChangeCategory) int {
	for _, tally := range summary {
		if tally.Category == category {
			return tally.Count
		}
	}
	return 0
}

// SummarizeChanges tallies status entries per category.
func SummarizeChanges(entries []gitrepo.StatusEntry) ChangeSummary {
	counts := make([]int, len(orderedCategories))
	for _, entry := range entries {
		for categoryIndex, ordered := range orderedCategories {
			if entry.Has(ordered.flag) {
				counts[categoryIndex]++
			}
		}
	}

	summary := ChangeSummary{}
	for categoryIndex, ordered := range orderedCategories {
		if counts[categoryIndex] > 0 {
			summary = append(summary, ChangeTally{Category: ordered.category, Count: counts[categoryIndex]})
		}
	}
	return summary
}

// ColorMode selects whether change tokens carry ANSI colours.
type ColorMode string

// Supported colour modes.
const (
	ColorAlways ColorMode = colorModeAlwaysConstant
	ColorNever  ColorMode = colorModeNeverConstant
	ColorAuto   ColorMode = colorModeAutoConstant
)

// UnmarshalText validates the textual colour mode.
func (mode *ColorMode) UnmarshalText(text []byte) error {
	candidate := ColorMode(strings.ToLower(strings.TrimSpace(string(text))))
	switch candidate {
	case ColorAlways, ColorNever, ColorAuto:
		*mode = candidate
		return nil
	case "":
		*mode = ColorAlways
		return nil
	default:
		return fmt.Errorf(unsupportedColorModeTemplateConstant, string(text))
	}
}

// MarshalText returns the textual colour mode.
func (mode ColorMode) MarshalText() ([]byte, error) {
	return []byte(mode), nil
}

// GlyphSet holds the glyph shown for each category and for a clean tree.
type GlyphSet struct {
	IndexModified    string `mapstructure:"index_modified" yaml:"index_modified"`
	IndexNew         string `mapstructure:"index_new" yaml:"index_new"`
	IndexDeleted     string `mapstructure:"index_deleted" yaml:"index_deleted"`
	Conflicted       string `mapstructure:"conflicted" yaml:"conflicted"`
	WorktreeModified string `mapstructure:"worktree_modified" yaml:"worktree_modified"`
	WorktreeNew      string `mapstructure:"worktree_new" yaml:"worktree_new"`
	WorktreeDeleted  string `mapstructure:"worktree_deleted" yaml:"worktree_deleted"`
	Clean            string `mapstructure:"clean" yaml:"clean"`
}

// DefaultGlyphSet returns the stock glyphs.
func DefaultGlyphSet() GlyphSet {
	return GlyphSet{
		IndexModified:    defaultIndexModifiedGlyphConstant,
		IndexNew:         defaultIndexNewGlyphConstant,
		IndexDeleted:     defaultIndexDeletedGlyphConstant,
		Conflicted:       defaultConflictedGlyphConstant,
		WorktreeModified: defaultWorktreeModifiedGlyphConstant,
		WorktreeNew:      defaultWorktreeNewGlyphConstant,
		WorktreeDeleted:  defaultWorktreeDeletedGlyphConstant,
		Clean:            defaultCleanGlyphConstant,
	}
}

// WithDefaults fills empty glyphs from DefaultGlyphSet.
func (glyphs GlyphSet) WithDefaults() GlyphSet {
	defaults := DefaultGlyphSet()
	fill := func(value *string, fallback string) {
		if len(strings.TrimSpace(*value)) == 0 {
			*value = fallback
		}
	}
	fill(&glyphs.IndexModified, defaults.IndexModified)
	fill(&glyphs.IndexNew, defaults.IndexNew)
	fill(&glyphs.IndexDeleted, defaults.IndexDeleted)
	fill(&glyphs.Conflicted, defaults.Conflicted)
	fill(&glyphs.WorktreeModified, defaults.WorktreeModified)
	fill(&glyphs.WorktreeNew, defaults.WorktreeNew)
	fill(&glyphs.WorktreeDeleted, defaults.WorktreeDeleted)
	fill(&glyphs.Clean, defaults.Clean)
	return glyphs
}

func (glyphs GlyphSet) glyph(category ChangeCategory) string {
	switch category {
	case CategoryIndexModified:
		return glyphs.IndexModified
	case CategoryIndexNew:
		return glyphs.IndexNew
	case CategoryIndexDeleted:
		return glyphs.IndexDeleted
	case CategoryConflicted:
		return glyphs.Conflicted
	case CategoryWorktreeModified:
		return glyphs.WorktreeModified
	case CategoryWorktreeNew:
		return glyphs.WorktreeNew
	default:
		return glyphs.WorktreeDeleted
	}
}

// ChangeFormatter renders a ChangeSummary as glyph and count tokens.
type ChangeFormatter struct {
	glyphs        GlyphSet
	categoryStyle map[ChangeCategory]*color.Color
	cleanStyle    *color.Color
}

// NewChangeFormatter builds a formatter. ColorAuto defers to fatih/color's
// terminal detection of standard output.
func NewChangeFormatter(glyphs GlyphSet, mode ColorMode) *ChangeFormatter {
	formatter := &ChangeFormatter{
		glyphs: glyphs.WithDefaults(),
		categoryStyle: map[ChangeCategory]*color.Color{
			CategoryIndexModified:    color.New(color.FgGreen),
			CategoryIndexNew:         color.New(color.FgGreen),
			CategoryIndexDeleted:     color.New(color.FgGreen),
			CategoryConflicted:       color.New(color.FgRed, color.Bold),
			CategoryWorktreeModified: color.New(color.FgYellow),
			CategoryWorktreeNew:      color.New(color.FgCyan),
			CategoryWorktreeDeleted:  color.New(color.FgRed),
		},
		cleanStyle: color.New(color.FgGreen, color.Bold),
	}

	styles := []*color.Color{formatter.cleanStyle}
	for _, style := range formatter.categoryStyle {
		styles = append(styles, style)
	}
	for _, style := range styles {
		switch mode {
		case ColorNever:
			style.DisableColor()
		case ColorAuto:
		default:
			style.EnableColor()
		}
	}
	return formatter
}

// Format renders each tally as {glyph}{count}; a clean summary renders the clean glyph.
func (formatter *ChangeFormatter) Format(summary ChangeSummary) string {
	if summary.IsClean() {
		return formatter.cleanStyle.Sprint(formatter.glyphs.Clean)
	}

	var builder strings.Builder
	for _, tally := range summary {
		token := formatter.glyphs.glyph(tally.Category) + strconv.Itoa(tally.Count)
		builder.WriteString(formatter.categoryStyle[tally.Category].Sprint(token))
	}
	return builder.String()
}

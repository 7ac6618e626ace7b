package prompt

import (
	"strconv"
	"strings"
)

const (
	behindGlyphConstant = "↓·"
	aheadGlyphConstant  = "↑·"
)

// DivergenceCount holds commit counts between a branch and its upstream.
type DivergenceCount struct {
	Ahead  int
	Behind int
}

// String renders the behind segment before the ahead segment, omitting zero counts.
func (count DivergenceCount) String() string {
	var builder strings.Builder
	if count.Behind > 0 {
		builder.WriteString(behindGlyphConstant)
		builder.WriteString(strconv.Itoa(count.Behind))
	}
	if count.Ahead > 0 {
		builder.WriteString(aheadGlyphConstant)
		builder.WriteString(strconv.Itoa(count.Ahead))
	}
	return builder.String()
}

package flags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValueConstant       = "true"
	toggleFalseCanonicalValueConstant      = "false"
	toggleTypeNameConstant                 = "toggle"
	toggleParseErrorTemplateConstant       = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageEmptyTemplateConstant       = "`%s`"
	toggleUsageFullTemplateConstant        = "`%s` %s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// AddToggleFlag registers a boolean flag accepting yes/no style values. A bare
// --name sets the flag to true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target}, name, formatToggleUsage(description, defaultValue))
	flagSet.Lookup(name).NoOptDefVal = toggleTrueCanonicalValueConstant
}

// ParseToggleValue interprets yes/no, on/off, true/false, and 1/0 literals.
func ParseToggleValue(rawValue string) (bool, error) {
	parsedValue, known := toggleLiterals[strings.ToLower(strings.TrimSpace(rawValue))]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}
	return parsedValue, nil
}

type toggleValue struct {
	target *bool
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	*value.target = parsedValue
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return toggleFalseCanonicalValueConstant
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplateConstant, placeholder, trimmedDescription)
}

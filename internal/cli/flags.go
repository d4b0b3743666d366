package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/gather/internal/config"
)

const (
	listFlagTypeName    = "names"
	booleanFlagTypeName = "bool"
	initFlagTypeName    = "target"

	listFlagSeparator                 = ","
	booleanFlagTrueLiteral            = "true"
	booleanFlagAcceptedValuesListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueErrorLabel = "invalid boolean value"
	invalidInitFlagValueMessage       = "invalid value %q for --%s: %w"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// listFlagValue collects names for -d, -f and -e. The first Set replaces the
// defaults; an empty value leaves the list empty.
type listFlagValue struct {
	target   *[]string
	replaced bool
}

func (value *listFlagValue) Set(input string) error {
	if !value.replaced {
		*value.target = nil
		value.replaced = true
	}
	for _, part := range strings.Split(input, listFlagSeparator) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		*value.target = append(*value.target, trimmed)
	}
	return nil
}

func (value *listFlagValue) String() string {
	if value == nil || value.target == nil {
		return "[]"
	}
	return "[" + strings.Join(*value.target, listFlagSeparator) + "]"
}

func (value *listFlagValue) Type() string {
	return listFlagTypeName
}

func registerListFlag(flagSet *pflag.FlagSet, target *[]string, name string, shorthand string, defaults []string, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = append([]string{}, defaults...)
	flagSet.VarP(&listFlagValue{target: target}, name, shorthand, usage)
}

type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", booleanFlagInvalidValueErrorLabel, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = false
	flagSet.Var(&booleanFlagValue{target: target, flagKey: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// initFlagValue accepts the configuration target of --init.
type initFlagValue struct {
	target *string
}

func (value *initFlagValue) Set(input string) error {
	parsed, parseError := config.ParseInitTarget(strings.ToLower(strings.TrimSpace(input)))
	if parseError != nil {
		return fmt.Errorf(invalidInitFlagValueMessage, input, initFlagName, parseError)
	}
	*value.target = string(parsed)
	return nil
}

func (value *initFlagValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

func (value *initFlagValue) Type() string {
	return initFlagTypeName
}

func registerInitFlag(flagSet *pflag.FlagSet, target *string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.Var(&initFlagValue{target: target}, initFlagName, initFlagDescription)
	if lookup := flagSet.Lookup(initFlagName); lookup != nil {
		lookup.NoOptDefVal = string(config.InitTargetLocal)
	}
}

// normalizeArguments rewrites space separated flag values into the --name=value
// form pflag understands: every value after a list flag up to the next flag, a
// boolean literal after a boolean flag, and a target after --init. A list flag
// with no values becomes --name= and clears the list.
func normalizeArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	flagTypes := map[string]string{}
	shorthandNames := map[string]string{}
	command.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag == nil || flag.Value == nil {
			return
		}
		flagTypes[flag.Name] = flag.Value.Type()
		if flag.Shorthand != "" {
			shorthandNames[flag.Shorthand] = flag.Name
		}
	})

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isBareFlag := bareFlagName(currentArgument, shorthandNames)
		if !isBareFlag {
			normalized = append(normalized, currentArgument)
			index++
			continue
		}

		switch flagTypes[flagName] {
		case listFlagTypeName:
			index++
			valueCount := 0
			for index < len(arguments) && !strings.HasPrefix(arguments[index], "-") {
				normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, arguments[index]))
				valueCount++
				index++
			}
			if valueCount == 0 {
				normalized = append(normalized, fmt.Sprintf("--%s=", flagName))
			}
			continue
		case booleanFlagTypeName:
			if index+1 < len(arguments) {
				literal := strings.ToLower(strings.TrimSpace(arguments[index+1]))
				if _, valid := booleanFlagLiterals[literal]; valid {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, arguments[index+1]))
					index += 2
					continue
				}
			}
		case initFlagTypeName:
			if index+1 < len(arguments) {
				nextArgument := strings.ToLower(strings.TrimSpace(arguments[index+1]))
				if nextArgument == string(config.InitTargetLocal) || nextArgument == string(config.InitTargetGlobal) {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, nextArgument))
					index += 2
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
		index++
	}
	return normalized
}

// bareFlagName resolves "--name" and "-n" to the long flag name. Arguments that
// already carry a value, positional arguments, and unknown shorthands are not bare flags.
func bareFlagName(argument string, shorthandNames map[string]string) (string, bool) {
	if strings.Contains(argument, "=") {
		return "", false
	}
	if strings.HasPrefix(argument, "--") && len(argument) > 2 {
		return strings.TrimPrefix(argument, "--"), true
	}
	if strings.HasPrefix(argument, "-") && len(argument) == 2 {
		name, known := shorthandNames[argument[1:]]
		return name, known
	}
	return "", false
}

package semantic

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"unilang/pkg/unitypes"
)

// applyRules checks value against rules. Numeric and pattern rules apply to every item
// of a list; length rules measure the list itself.
func applyRules(argument string, value unitypes.Value, rules []unitypes.ValidationRule) *Error {
	for _, rule := range rules {
		if err := applyRule(argument, value, rule); err != nil {
			return err
		}
	}
	return nil
}

func applyRule(argument string, value unitypes.Value, rule unitypes.ValidationRule) *Error {
	switch rule.Type {
	case unitypes.RuleMin, unitypes.RuleMax, unitypes.RulePattern:
		if list, ok := value.(unitypes.ListValue); ok {
			for _, item := range list {
				if err := applyRule(argument, item, rule); err != nil {
					return err
				}
			}
			return nil
		}
	}

	switch rule.Type {
	case unitypes.RuleMin:
		if n, ok := numeric(value); ok && n < rule.Number {
			return validationError(
				"Validation Error: Argument '%s' has value %s which is less than the minimum allowed value of %s. Please provide a value >= %s.",
				argument, valueText(value), formatNumber(rule.Number), formatNumber(rule.Number))
		}
	case unitypes.RuleMax:
		if n, ok := numeric(value); ok && n > rule.Number {
			return validationError(
				"Validation Error: Argument '%s' has value %s which exceeds the maximum allowed value of %s. Please provide a value <= %s.",
				argument, valueText(value), formatNumber(rule.Number), formatNumber(rule.Number))
		}
	case unitypes.RuleMinLength:
		if n, unit, ok := length(value); ok && n < rule.Count {
			return validationError(
				"Validation Error: Argument '%s' has length %d which is less than the minimum required length of %d. Please provide a value with at least %d %s.",
				argument, n, rule.Count, rule.Count, unit)
		}
	case unitypes.RuleMaxLength:
		if n, unit, ok := length(value); ok && n > rule.Count {
			return validationError(
				"Validation Error: Argument '%s' has length %d which exceeds the maximum allowed length of %d. Please provide a value with at most %d %s.",
				argument, n, rule.Count, rule.Count, unit)
		}
	case unitypes.RulePattern:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return validationError("Validation Error: Argument '%s' has an invalid pattern '%s': %v", argument, rule.Pattern, err)
		}
		if !re.MatchString(value.String()) {
			return validationError(
				"Validation Error: Argument '%s' with value %s does not match the required pattern '%s'. Please provide a value matching this pattern.",
				argument, valueText(value), rule.Pattern)
		}
	case unitypes.RuleMinItems:
		list, ok := value.(unitypes.ListValue)
		if !ok {
			return validationError(
				"Validation Error: Argument '%s' with value %s is not a list, so the minimum of %d items cannot be met. Please provide a list.",
				argument, valueText(value), rule.Count)
		}
		if n := len(list); n < rule.Count {
			return validationError(
				"Validation Error: Argument '%s' has %d items which is less than the minimum required %d items. Please provide at least %d items.",
				argument, n, rule.Count, rule.Count)
		}
	}
	return nil
}

func validationError(format string, args ...interface{}) *Error {
	return newError(unitypes.ErrCodeValidationRuleFailed, format, args...)
}

func numeric(value unitypes.Value) (float64, bool) {
	switch n := value.(type) {
	case unitypes.IntegerValue:
		return float64(n), true
	case unitypes.FloatValue:
		return float64(n), true
	default:
		return 0, false
	}
}

func length(value unitypes.Value) (int, string, bool) {
	switch v := value.(type) {
	case unitypes.ListValue:
		return len(v), "items", true
	case unitypes.MapValue:
		return len(v), "items", true
	case unitypes.StringValue, unitypes.PathValue, unitypes.FileValue, unitypes.DirectoryValue,
		unitypes.EnumValue, unitypes.JSONStringValue, unitypes.URLValue:
		return utf8.RuneCountInString(v.String()), "characters", true
	default:
		return 0, "", false
	}
}

// valueText renders a value for validation messages: text is quoted, lists are summarised.
func valueText(value unitypes.Value) string {
	switch v := value.(type) {
	case unitypes.IntegerValue, unitypes.FloatValue, unitypes.BooleanValue:
		return v.String()
	case unitypes.ListValue:
		return "[" + strconv.Itoa(len(v)) + " items]"
	default:
		return "'" + v.String() + "'"
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

package fingerprint

import "fmt"

// PatternError reports an ignore pattern that is not a valid regular expression.
type PatternError struct {
	Field   Field
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("fingerprint: invalid %s pattern %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// RuleError reports an ignore rule that cannot be decoded.
type RuleError struct {
	Rule    any
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("fingerprint: invalid ignore rule %v: %s", e.Rule, e.Message)
}

func ruleErr(rule any, format string, args ...any) *RuleError {
	return &RuleError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

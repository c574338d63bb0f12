package temporal

import "fmt"

// ResolutionError reports a time expression that could not be turned into dates
type ResolutionError struct {
	Expression string
	Reason     string
}

func (e *ResolutionError) Error() string {
	if e.Expression == "" {
		return fmt.Sprintf("resolve time expression: %s", e.Reason)
	}
	return fmt.Sprintf("resolve time expression %q: %s", e.Expression, e.Reason)
}

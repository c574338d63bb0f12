package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure modes callers can tell apart with errors.Is
var (
	ErrTimeout   = errors.New("llm timeout")
	ErrProvider  = errors.New("llm provider error")
	ErrMalformed = errors.New("llm malformed response")
)

// wrapError tags a transport or API error as a timeout or a provider error
func wrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrProvider) {
		return err
	}
	if isTimeout(err) {
		return fmt.Errorf("%s: %w: %w", provider, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, ErrProvider, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

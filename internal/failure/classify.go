package failure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
)

// Kind is the most specific classification available for an arbitrary error.
// Classified failures map to their category; well-known error shapes map to
// stable kinds so handlers and suggestion lookups survive refactors of the
// underlying error types.
type Kind string

const (
	KindConnection Kind = "connection"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindTimeout    Kind = "timeout"
)

// Classify derives the handler-dispatch kind for an error
func Classify(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return Kind(f.Category)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	}

	return Kind(fmt.Sprintf("%T", err))
}

// staticSuggestions covers well-known fault shapes for errors that carry no
// suggestions of their own
var staticSuggestions = map[Kind][]string{
	KindConnection: {
		"Check the network connection",
		"Verify proxy settings",
		"Wait a moment and retry",
	},
	KindNotFound: {
		"Verify the path is correct",
		"Confirm the resource exists",
		"Check that permissions are configured correctly",
	},
	KindPermission: {
		"Check file and directory permissions",
		"Run with elevated privileges if appropriate",
		"Ensure the resource is not held by another process",
	},
	KindTimeout: {
		"Increase the timeout value",
		"Split the operation into smaller pieces",
		"Check system load",
	},
}

// SuggestionsFor returns recovery suggestions for an error: the failure's
// own list when it is classified, otherwise the static table entry for its
// kind. Returns nil when nothing applies.
func SuggestionsFor(err error) []string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Suggestions
	}
	return staticSuggestions[Classify(err)]
}

// SuggestionsForKind returns the static suggestions for a kind, or nil
func SuggestionsForKind(kind Kind) []string {
	return staticSuggestions[kind]
}

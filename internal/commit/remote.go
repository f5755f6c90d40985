package commit

import (
	"context"
	"fmt"
)

// RemoteError represents a commitment the buying-group site rejected.
// Message carries the site's own wording; the controller inspects it for
// the recoverable minimum-quantity case.
type RemoteError struct {
	StatusCode int    // HTTP status of the rejection, 0 when unknown
	Message    string // Site error text (e.g. "You must buy 3 or more")
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote commit rejected: %s", e.Message)
}

// CommitFunc submits one commitment attempt to the site. A rejection is
// returned as *RemoteError; any other error is a transport failure.
type CommitFunc func(ctx context.Context, listingID string, quantity int) error

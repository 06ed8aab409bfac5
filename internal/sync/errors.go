package sync

import "fmt"

type Op string

const (
	OpPush Op = "push"
	OpPull Op = "pull"
	OpDiff Op = "diff"
)

// SyncError wraps any failure talking to the remote or the local store
// during a sync. Local state is never rolled back on a SyncError.
type SyncError struct {
	Op       Op
	PlayerID string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s for %q: %v", e.Op, e.PlayerID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// StatusError is returned by HTTPRemote for unexpected HTTP statuses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

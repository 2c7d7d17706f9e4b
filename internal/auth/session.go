// Package auth manages the local session file that links the CLI to an
// account. Presence of the file is the signed-in signal; its contents are
// written by the sign-in flow and treated as opaque here.
package auth

import (
	"os"
	"path/filepath"
)

const (
	sessionDirName  = ".economist"
	sessionFileName = "session.json"
)

// ClearOutcome identifies what a sign-out attempt did to the session file.
type ClearOutcome int

const (
	// OutcomeRemoved means the session file existed and was deleted.
	OutcomeRemoved ClearOutcome = iota
	// OutcomeAlreadySignedOut means no session file was present. This is
	// a recognized idempotent outcome, not an error.
	OutcomeAlreadySignedOut
	// OutcomeFailed means the delete failed for a reason other than the
	// file being absent (permissions, I/O fault).
	OutcomeFailed
)

func (o ClearOutcome) String() string {
	switch o {
	case OutcomeRemoved:
		return "removed"
	case OutcomeAlreadySignedOut:
		return "already_signed_out"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ClearResult carries the outcome of a sign-out attempt. Err is set only
// when Outcome is OutcomeFailed.
type ClearResult struct {
	Outcome ClearOutcome
	Err     error
}

// SessionPath returns the fixed, home-relative location of the session
// file. Computing the path never touches the filesystem beyond resolving
// the home directory.
func SessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, sessionDirName, sessionFileName), nil
}

// DataDir returns the directory holding the session file, user config and
// the interaction store database.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, sessionDirName), nil
}

// Clear deletes the session file at the standard location. It never
// returns a bare error: every failure mode is folded into the result so
// the command surface can render it as a message.
func Clear() ClearResult {
	path, err := SessionPath()
	if err != nil {
		return ClearResult{Outcome: OutcomeFailed, Err: err}
	}
	return ClearPath(path)
}

// ClearPath deletes the session file at an explicit path. Deleting an
// absent file reports OutcomeAlreadySignedOut, which keeps repeated
// sign-outs idempotent: removed, then already-signed-out, never a failure.
func ClearPath(path string) ClearResult {
	err := os.Remove(path)
	switch {
	case err == nil:
		return ClearResult{Outcome: OutcomeRemoved}
	case os.IsNotExist(err):
		return ClearResult{Outcome: OutcomeAlreadySignedOut}
	default:
		return ClearResult{Outcome: OutcomeFailed, Err: err}
	}
}

// SignedIn reports whether a session file is present at the standard
// location.
func SignedIn() bool {
	path, err := SessionPath()
	if err != nil {
		return false
	}
	return SignedInAt(path)
}

// SignedInAt reports whether a session file is present at an explicit path.
func SignedInAt(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

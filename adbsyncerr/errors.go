// Package adbsyncerr defines the error kinds produced by the sync client.
//
// Every fallible call elsewhere in this module wraps one of these
// sentinels (or a plain I/O error) with github.com/pkg/errors so callers
// can recover the kind with errors.Is/errors.As while still getting a
// readable chain of context.
package adbsyncerr

import (
	"github.com/pkg/errors"
)

// Sentinel error kinds from the design's error taxonomy.
var (
	// ErrConnectFailed means a sync stream could not be obtained at all.
	ErrConnectFailed = errors.New("could not connect to sync service")

	// ErrPathTooLong means a request path exceeds wire.MaxPath.
	ErrPathTooLong = errors.New("path too long")

	// ErrProtocol means the peer sent a malformed or out-of-sequence frame.
	ErrProtocol = errors.New("protocol error")

	// ErrNotFound means a remote stat came back with mode == 0.
	ErrNotFound = errors.New("remote path not found")

	// ErrUnsupportedLocalMode means a local source is neither a regular
	// file nor a symlink (a FIFO, socket, or device node).
	ErrUnsupportedLocalMode = errors.New("unsupported local file type")
)

// RemoteCopyFail is the error produced when the peer responds to a
// SEND/RECV transaction with FAIL. Error() returns the server's
// message verbatim, unwrapped, so that callers formatting
// "failed to copy '%s' to '%s': %s" reproduce the peer's message
// exactly rather than double-wrapping it.
type RemoteCopyFail struct {
	Msg string
}

func (e *RemoteCopyFail) Error() string {
	return e.Msg
}

// NewRemoteCopyFail wraps a FAIL message from the peer.
func NewRemoteCopyFail(msg string) error {
	return &RemoteCopyFail{Msg: msg}
}

// IsRemoteCopyFail reports whether err is (or wraps) a *RemoteCopyFail,
// returning its message.
func IsRemoteCopyFail(err error) (string, bool) {
	var rcf *RemoteCopyFail
	if errors.As(err, &rcf) {
		return rcf.Msg, true
	}
	return "", false
}

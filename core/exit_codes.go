package core

import (
	"os"
	"syscall"
)

// Exit codes for the application.
// These follow Unix conventions where signal-based exits are 128 + signal number.
const (
	// ExitCodeSuccess indicates every input rendered (exit code 0)
	ExitCodeSuccess = 0

	// ExitCodeError indicates a configuration error or at least one failed render (exit code 1)
	ExitCodeError = 1

	// ExitCodeSIGINT indicates termination due to SIGINT (Ctrl+C)
	ExitCodeSIGINT = 130

	// ExitCodeSIGTERM indicates termination due to SIGTERM
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// ExitCodeForSignal maps the signal that stopped the process to its exit code.
// A nil signal means no signal was received.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case nil:
		return ExitCodeSuccess
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	default:
		return ExitCodeSIGINT
	}
}

// IsSignalExit returns true if the exit code indicates a signal-based termination.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}

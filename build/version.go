package build

import (
	"errors"
	"strings"
)

// Version is the current version of piclaimd.
const Version = "0.1.0"

// JoinErrors joins a slice of errors into a single error, separated by sep.
// nil errors are skipped. JoinErrors returns nil if every error in errs is
// nil.
func JoinErrors(errs []error, sep string) error {
	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, sep))
}

// Critical logs a critical, unrecoverable error. Unlike the rest of the
// logging in this codebase, Critical writes outside of the in-memory log
// ring, because by the time it's called the supervisor may already be
// shutting down.
func Critical(err error) {
	if err == nil {
		return
	}
	if DEBUG {
		panic(err)
	}
	println("CRITICAL:", err.Error())
}

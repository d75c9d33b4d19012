package common

import (
	"fmt"
	"io"
)

// Forever invokes thunk repeatedly, catching panics, so that a background
// loop never takes the process down.  Panic messages are printed to log.
// The thunk should loop internally and return only on failure, otherwise
// the restarts get expensive.

func Forever(thunk func(), log io.Writer) {
	run := func() {
		defer func() {
			if msg := recover(); msg != nil {
				fmt.Fprintln(log, msg)
			}
		}()
		thunk()
	}
	for {
		run()
	}
}

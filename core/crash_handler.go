package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// CrashHandler receives the recovered panic value from a worker goroutine
type CrashHandler func(r any)

var crashHandler atomic.Pointer[CrashHandler]

// SetCrashHandler installs a process-wide handler for goroutine panics.
// Frontends that own the terminal install one that restores it before exit.
func SetCrashHandler(h CrashHandler) {
	if h != nil {
		crashHandler.Store(&h)
	}
}

// HandleCrash is the default panic handler, prints the stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if p := crashHandler.Load(); p != nil {
		(*p)(r)
		return
	}

	fmt.Fprintf(os.Stderr, "CRASH DETECTED: %v\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword for long-lived worker threads so a
// panicking worker reports through the installed crash handler.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

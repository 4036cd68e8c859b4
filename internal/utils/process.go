package utils

import (
	"os"
	"os/signal"
	"syscall"
)

// OnInterruptOrKill runs fn in a new goroutine once the process receives an
// interrupt (Ctrl+C) or termination signal (SIGTERM).
func OnInterruptOrKill(fn func(os.Signal)) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		signal.Stop(sigChan)
		fn(sig)
	}()
}

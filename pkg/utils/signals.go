package utils

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/srand/jolt/testrunner/pkg/log"
)

func init() {
	ch := make(chan os.Signal, 10)
	signal.Notify(ch, syscall.SIGUSR1)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGUSR1:
				buf := make([]byte, 1<<16)
				len := runtime.Stack(buf, true)
				fmt.Printf("%s\n", buf[:len])
			}
		}
	}()
}

// Returns a context that is cancelled on SIGINT or SIGTERM.
// A second signal terminates the process immediately.
func TerminateOnSignal(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-ch
		log.Info("Received signal", sig, "- stopping")
		cancel()

		<-ch
		log.Warn("Received second signal, terminating")
		os.Exit(1)
	}()

	return ctx, cancel
}

// Package signals maps signal names to os.Signal values and wires them to
// contexts and callbacks.
package signals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var ErrUnknownSignal = errors.New("unknown signal")

var defaultSignals = []string{"INT", "TERM"}

// Lookup accepts "INT", "SIGINT" or "int".
func Lookup(name string) (os.Signal, error) {
	key := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "SIG")
	if sig, ok := byName[key]; ok {
		return sig, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

func lookupAll(names []string) ([]os.Signal, error) {
	if len(names) == 0 {
		names = defaultSignals
	}
	sigs := make([]os.Signal, 0, len(names))
	for _, n := range names {
		sig, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// NotifyContext is signal.NotifyContext by name. With no names it listens
// for INT and TERM.
func NotifyContext(ctx context.Context, names ...string) (context.Context, context.CancelFunc, error) {
	sigs, err := lookupAll(names)
	if err != nil {
		return nil, nil, err
	}
	ctx, stop := signal.NotifyContext(ctx, sigs...)
	return ctx, stop, nil
}

// Handle calls fn for every delivered signal until ctx is done or stop is
// called. fn runs on a single goroutine, one signal at a time.
func Handle(ctx context.Context, fn func(os.Signal), names ...string) (stop func(), err error) {
	sigs, err := lookupAll(names)
	if err != nil {
		return nil, err
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				fn(sig)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		cancel()
		<-done
	}, nil
}

var byName = map[string]os.Signal{
	"INT":  os.Interrupt,
	"KILL": os.Kill,
	"TERM": syscall.SIGTERM,
}

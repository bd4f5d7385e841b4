package device

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/dmitrijs2005/milktracker/internal/logging"
	"golang.org/x/term"
)

// getSize is a test seam for term.GetSize.
var getSize = term.GetSize

// Observer keeps the current variant up to date with the terminal size.
// A non-zero width override pins the width and disables probing.
type Observer struct {
	userAgent string
	override  int
	fd        int
	logger    logging.Logger

	mu      sync.RWMutex
	width   int
	variant Variant
}

func NewObserver(userAgent string, override int, l logging.Logger) *Observer {
	o := &Observer{
		userAgent: userAgent,
		override:  override,
		fd:        int(os.Stdout.Fd()),
		logger:    l.With("module", "device"),
	}
	o.Refresh()
	return o
}

func (o *Observer) Variant() Variant {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.variant
}

func (o *Observer) Width() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.width
}

// Refresh re-reads the width and re-classifies.
func (o *Observer) Refresh() Variant {
	width := o.override
	if width <= 0 {
		w, _, err := getSize(o.fd)
		if err != nil {
			// Not a terminal, fall back to the user agent alone.
			w = 0
		}
		width = w
	}
	v := Classify(Input{UserAgent: o.userAgent, Width: width})

	o.mu.Lock()
	changed := v != o.variant
	o.width, o.variant = width, v
	o.mu.Unlock()

	if changed {
		o.logger.Debug(context.Background(), "layout variant changed", "variant", v.String(), "width", width)
	}
	return v
}

// Run re-classifies on every terminal resize until ctx is done.
func (o *Observer) Run(ctx context.Context) {
	sigs := resizeSignals()
	if o.override > 0 || len(sigs) == 0 {
		<-ctx.Done()
		return
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			o.Refresh()
		}
	}
}

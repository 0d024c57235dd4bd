// narrator/narrator.go
package narrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jetchart/impostor/logger"
)

// DefaultTimeout caps how long the game waits for a playback ack. A
// device with broken speech should never stall the turn loop.
const DefaultTimeout = 5 * time.Second

// Transport delivers a narration request to the device. The device
// speaks the text and acks with the same id.
type Transport interface {
	SendNarration(id, text string) error
}

// Gateway implements game.Narrator over a device transport. Announce
// sends the text, then waits for the device ack, the timeout, or
// cancellation, whichever comes first. All of those resolve Announce
// without error; narration is best-effort by contract.
type Gateway struct {
	transport Transport
	timeout   time.Duration

	mutex   sync.Mutex
	muted   bool
	pending map[string]chan struct{}
}

func NewGateway(transport Transport, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		transport: transport,
		timeout:   timeout,
		pending:   make(map[string]chan struct{}),
	}
}

func (g *Gateway) Announce(ctx context.Context, text string) error {
	g.mutex.Lock()
	if g.muted {
		g.mutex.Unlock()
		return nil
	}
	id := uuid.New().String()
	done := make(chan struct{})
	g.pending[id] = done
	g.mutex.Unlock()

	defer func() {
		g.mutex.Lock()
		delete(g.pending, id)
		g.mutex.Unlock()
	}()

	g.mutex.Lock()
	transport := g.transport
	g.mutex.Unlock()
	if transport == nil {
		return nil
	}
	if err := transport.SendNarration(id, text); err != nil {
		return err
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		logger.Log.Debugf("narration %s timed out after %v", id, g.timeout)
	case <-ctx.Done():
	}
	return nil
}

// Bind attaches the transport. Used when the transport needs an
// identifier that only exists after the gateway's owner is created;
// announcements before Bind resolve silently.
func (g *Gateway) Bind(transport Transport) {
	g.mutex.Lock()
	g.transport = transport
	g.mutex.Unlock()
}

// Done acks a narration by id. Unknown ids are ignored; the wait may
// already have timed out.
func (g *Gateway) Done(id string) {
	g.mutex.Lock()
	done, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	g.mutex.Unlock()
	if ok {
		close(done)
	}
}

func (g *Gateway) SetMuted(muted bool) {
	g.mutex.Lock()
	g.muted = muted
	g.mutex.Unlock()
}

// Cancel releases every in-flight Announce immediately.
func (g *Gateway) Cancel() {
	g.mutex.Lock()
	pending := g.pending
	g.pending = make(map[string]chan struct{})
	g.mutex.Unlock()
	for _, done := range pending {
		close(done)
	}
}

// Silent discards all narration. Used when a game runs without a
// speech-capable device attached.
type Silent struct{}

func (Silent) Announce(ctx context.Context, text string) error { return nil }
func (Silent) SetMuted(muted bool)                             {}
func (Silent) Cancel()                                         {}

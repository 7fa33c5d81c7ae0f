package util

import "sync"

// SignalHandler receives the emitting object plus optional parameters.
type SignalHandler func(sender any, params ...any)

// Signals is a tiny in-process publish/subscribe hub used to decouple model
// events from their listeners.
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var (
	sigOnce sync.Once
	sig     *Signals
)

// Sig returns the process-wide signal hub.
func Sig() *Signals {
	sigOnce.Do(func() {
		sig = &Signals{handlers: make(map[string][]SignalHandler)}
	})
	return sig
}

// Connect registers a handler for the named signal.
func (s *Signals) Connect(name string, h SignalHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = append(s.handlers[name], h)
}

// Emit invokes all handlers registered for the named signal, in order.
func (s *Signals) Emit(name string, sender any, params ...any) {
	s.mu.RLock()
	hs := append([]SignalHandler(nil), s.handlers[name]...)
	s.mu.RUnlock()
	for _, h := range hs {
		h(sender, params...)
	}
}

// Reset drops all registered handlers. Test helper.
func (s *Signals) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = make(map[string][]SignalHandler)
}

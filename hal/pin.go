package hal

import (
	"fmt"
	"sync"
)

type virtualPin struct {
	mu    sync.Mutex
	name  string
	level bool
}

// NewVirtualPin returns an in-memory pin. The simulator writes the level,
// the firmware reads it.
func NewVirtualPin(name string) Pin {
	return &virtualPin{name: name}
}

func (p *virtualPin) Name() string { return p.name }

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	return nil
}

type nullPin struct{ name string }

// NewNullPin returns a pin that always reads low and rejects writes.
func NewNullPin(name string) Pin { return nullPin{name: name} }

func (p nullPin) Name() string        { return p.name }
func (p nullPin) Read() (bool, error) { return false, nil }
func (p nullPin) Write(bool) error {
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

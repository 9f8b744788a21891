package ui

import (
	"fmt"
	"sync"
	"time"
)

// Spinner shows a small terminal animation while a blocking step (repo pull,
// SSH probes) runs outside the TUI.
type Spinner struct {
	frames   []string
	interval time.Duration
	message  string
	stop     chan bool
	wg       sync.WaitGroup
	active   bool
	mu       sync.Mutex
}

// NewSpinner creates a spinner with the given status message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:   []string{".", "·", "•", "¤", "°", "¤", "•", "·"},
		interval: 100 * time.Millisecond,
		message:  message,
		stop:     make(chan bool),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		i := 0
		for {
			select {
			case <-s.stop:
				fmt.Printf("\r\033[K")
				return
			default:
				s.mu.Lock()
				msg := s.message
				s.mu.Unlock()
				fmt.Printf("\r%s %s", msg, s.frames[i%len(s.frames)])
				i++
				time.Sleep(s.interval)
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	s.stop <- true
	s.wg.Wait()
}

// UpdateMessage changes the message while running.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

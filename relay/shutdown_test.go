package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownSignal(t *testing.T) {
	s := NewShutdownSignal()

	assert.False(t, s.Requested())

	s.Request()
	assert.True(t, s.Requested())

	// Idempotent.
	s.Request()
	assert.True(t, s.Requested())
}

func TestShutdownSignalConcurrent(t *testing.T) {
	s := NewShutdownSignal()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Request()
		}()
		go func() {
			defer wg.Done()
			s.Requested()
		}()
	}
	wg.Wait()

	assert.True(t, s.Requested())
}

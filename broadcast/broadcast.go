// Package broadcast fans configuration snapshots and other values out to any
// number of listeners using linked channels: every written value carries the
// channel the next value will arrive on, so late listeners never block writers.
package broadcast

import (
	"sync"
)

type message struct {
	v interface{}
	c chan message
}

// Broadcaster delivers every written value, in order, to all active
// listeners. Nothing is dropped, so a listener that stops reading without
// cancelling keeps its backlog alive.
type Broadcaster struct {
	mx     sync.Mutex
	c      chan message
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{c: make(chan message, 1)}
}

// Broadcast writes v to all listeners. It never blocks.
func (b *Broadcaster) Broadcast(v interface{}) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.closed {
		return
	}

	next := make(chan message, 1)
	b.c <- message{v, next}
	b.c = next
}

// Listen returns a channel of values written after the call and a cancel
// function releasing the listener.
func (b *Broadcaster) Listen() (<-chan interface{}, func()) {
	b.mx.Lock()
	current := b.c
	b.mx.Unlock()

	values := make(chan interface{})
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(values)
		c := current
		for {
			select {
			case <-done:
				return
			case msg, ok := <-c:
				if !ok {
					return
				}
				// put it back for the other listeners
				c <- msg
				c = msg.c
				select {
				case values <- msg.v:
				case <-done:
					return
				}
			}
		}
	}()

	return values, func() { once.Do(func() { close(done) }) }
}

// Close ends every listener.
func (b *Broadcaster) Close() {
	b.mx.Lock()
	defer b.mx.Unlock()
	if !b.closed {
		b.closed = true
		close(b.c)
	}
}

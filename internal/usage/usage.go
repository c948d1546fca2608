// Package usage records per-turn telemetry as a fire-and-forget side
// effect. Recording never blocks a turn and a full buffer drops the
// event rather than applying backpressure.
package usage

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync"
	"time"
)

// Event is one processed conversation turn.
type Event struct {
	SenderHash string
	Step       string
	Voice      bool
	Latency    time.Duration
}

type Logger struct {
	ch        chan Event
	closeOnce sync.Once
	done      chan struct{}
}

func NewLogger(buffer int) *Logger {
	if buffer <= 0 {
		buffer = 256
	}
	l := &Logger{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go l.drain()
	return l
}

// Record enqueues the event, dropping it when the buffer is full.
func (l *Logger) Record(ev Event) {
	if l == nil {
		return
	}
	select {
	case l.ch <- ev:
	default:
		// Dropped: usage logging is best-effort.
	}
}

func (l *Logger) drain() {
	for ev := range l.ch {
		log.Printf("usage: sender=%s step=%s voice=%v latency=%s", ev.SenderHash, ev.Step, ev.Voice, ev.Latency)
	}
	close(l.done)
}

// Close stops the drain goroutine after flushing buffered events.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		close(l.ch)
		<-l.done
	})
}

// HashSender anonymizes the channel identity for logs.
func HashSender(senderID string) string {
	sum := sha256.Sum256([]byte(senderID))
	return hex.EncodeToString(sum[:8])
}

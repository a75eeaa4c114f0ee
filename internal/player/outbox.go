package player

import (
	"io"
	"sync"
	"sync/atomic"
)

const defaultOutboxSize = 256

// Outbox is a bounded queue of output for one connection. Enqueue never
// blocks: when the queue is full the line is dropped and counted.
type Outbox struct {
	lines chan string
	done  chan struct{}

	closeOnce sync.Once
	dropped   atomic.Uint64
}

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	return &Outbox{
		lines: make(chan string, size),
		done:  make(chan struct{}),
	}
}

// Enqueue queues line followed by a newline.
func (o *Outbox) Enqueue(line string) bool {
	return o.push(line + "\n")
}

// Prompt queues text with no trailing newline.
func (o *Outbox) Prompt(text string) bool {
	return o.push(text)
}

func (o *Outbox) push(s string) bool {
	select {
	case <-o.done:
		return false
	default:
	}

	select {
	case o.lines <- s:
		return true
	default:
		o.dropped.Add(1)
		return false
	}
}

// Dropped returns how many lines were discarded because the queue was full.
func (o *Outbox) Dropped() uint64 {
	return o.dropped.Load()
}

// Close stops the outbox accepting lines. Drain writes whatever is still
// queued and returns.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() { close(o.done) })
}

// Drain writes queued output to w until the outbox is closed and empty,
// or a write fails.
func (o *Outbox) Drain(w io.Writer) error {
	for {
		select {
		case s := <-o.lines:
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		case <-o.done:
			for {
				select {
				case s := <-o.lines:
					if _, err := io.WriteString(w, s); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		}
	}
}

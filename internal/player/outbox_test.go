package player

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestOutbox_DropsWhenFull(t *testing.T) {
	o := NewOutbox(2)

	testutil.AssertEqual(t, "first", o.Enqueue("one"), true)
	testutil.AssertEqual(t, "second", o.Enqueue("two"), true)
	testutil.AssertEqual(t, "third", o.Enqueue("three"), false)
	testutil.AssertEqual(t, "prompt", o.Prompt("> "), false)
	testutil.AssertEqual(t, "dropped", o.Dropped(), uint64(2))
}

func TestOutbox_DrainFlushesAfterClose(t *testing.T) {
	o := NewOutbox(8)
	o.Enqueue("one")
	o.Prompt("> ")
	o.Close()

	var buf bytes.Buffer
	if err := o.Drain(&buf); err != nil {
		t.Fatalf("drain: %v", err)
	}
	testutil.AssertEqual(t, "output", buf.String(), "one\n> ")
}

func TestOutbox_EnqueueAfterCloseIsSilent(t *testing.T) {
	o := NewOutbox(8)
	o.Close()
	o.Close()

	testutil.AssertEqual(t, "accepted", o.Enqueue("late"), false)
	testutil.AssertEqual(t, "not counted as dropped", o.Dropped(), uint64(0))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestOutbox_DrainStopsOnWriteError(t *testing.T) {
	o := NewOutbox(8)
	o.Enqueue("one")

	err := o.Drain(failingWriter{})
	testutil.AssertErrorContains(t, err, "broken pipe")
}

func TestNewOutbox_DefaultSize(t *testing.T) {
	o := NewOutbox(0)
	testutil.AssertEqual(t, "capacity", cap(o.lines), defaultOutboxSize)
}

package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestBarLogsOutsideTTY(t *testing.T) {
	// test binaries never run on a TTY, so the bar takes the log path
	var buf bytes.Buffer
	logger := log.New(&buf)

	b := New(logger, "converting", 20)
	for i := 0; i < 20; i++ {
		b.Add(1)
	}
	b.Finish()

	out := buf.String()
	if !strings.Contains(out, "converting") {
		t.Fatalf("no progress lines logged: %q", out)
	}
	if !strings.Contains(out, "done=20") {
		t.Fatalf("final count not logged: %q", out)
	}
}

func TestBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	b := New(log.New(&buf), "empty", 0)
	b.Add(1) // must not divide by zero
	b.Finish()
}

func TestModelRatioView(t *testing.T) {
	m := newModel("render")
	m.bar.Width = 20

	updated, _ := m.Update(ratioMsg(0.5))
	m = updated.(model)
	if m.ratio != 0.5 {
		t.Fatalf("ratio = %v, want 0.5", m.ratio)
	}
	if view := m.View(); !strings.Contains(view, "50%") {
		t.Fatalf("view missing percentage: %q", view)
	}
}

/*
Package loggingtest provides a Logger that records its entries, and lets
tests wait for expected entries.
*/
package loggingtest

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zalando/vhosts/logging"
)

// entries are shared by a logger and the loggers derived from it
type entries struct {
	mu      sync.Mutex
	list    []string
	muted   bool
	changed chan struct{}
}

// TestLogger implements logging.Logger. Loggers derived with WithFields
// share the entries of their parent.
type TestLogger struct {
	entries *entries
	fields  string
}

var ErrWaitTimeout = errors.New("timeout")

var _ logging.Logger = (*TestLogger)(nil)

func New() *TestLogger {
	return &TestLogger{entries: &entries{changed: make(chan struct{})}}
}

func (e *entries) add(entry string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.muted {
		return
	}

	e.list = append(e.list, entry)
	close(e.changed)
	e.changed = make(chan struct{})
}

// count returns the number of entries containing exp, and a channel
// closed on the next added entry.
func (e *entries) count(exp string) (int, <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var n int
	for _, entry := range e.list {
		if strings.Contains(entry, exp) {
			n++
		}
	}

	return n, e.changed
}

func (tl *TestLogger) record(level, msg string) {
	e := level + " " + msg + tl.fields
	log.Println(e)
	tl.entries.add(e)
}

// WaitForN waits until at least n entries contain exp.
func (tl *TestLogger) WaitForN(exp string, n int, to time.Duration) error {
	timeout := time.NewTimer(to)
	defer timeout.Stop()

	for {
		c, changed := tl.entries.count(exp)
		if c >= n {
			return nil
		}

		select {
		case <-changed:
		case <-timeout.C:
			return ErrWaitTimeout
		}
	}
}

// WaitFor waits until an entry contains exp.
func (tl *TestLogger) WaitFor(exp string, to time.Duration) error {
	return tl.WaitForN(exp, 1, to)
}

// Count returns the number of entries that contain exp.
func (tl *TestLogger) Count(exp string) int {
	n, _ := tl.entries.count(exp)
	return n
}

// Entries returns a copy of the recorded entries. Every entry starts
// with its level in upper case.
func (tl *TestLogger) Entries() []string {
	tl.entries.mu.Lock()
	defer tl.entries.mu.Unlock()
	return slices.Clone(tl.entries.list)
}

// Reset drops the recorded entries.
func (tl *TestLogger) Reset() {
	tl.entries.mu.Lock()
	defer tl.entries.mu.Unlock()
	tl.entries.list = nil
}

func (tl *TestLogger) setMuted(m bool) {
	tl.entries.mu.Lock()
	defer tl.entries.mu.Unlock()
	tl.entries.muted = m
}

// Mute stops recording entries until Unmute is called.
func (tl *TestLogger) Mute()   { tl.setMuted(true) }
func (tl *TestLogger) Unmute() { tl.setMuted(false) }

func (tl *TestLogger) Error(a ...interface{})            { tl.record("ERROR", fmt.Sprint(a...)) }
func (tl *TestLogger) Errorf(f string, a ...interface{}) { tl.record("ERROR", fmt.Sprintf(f, a...)) }
func (tl *TestLogger) Warn(a ...interface{})             { tl.record("WARN", fmt.Sprint(a...)) }
func (tl *TestLogger) Warnf(f string, a ...interface{})  { tl.record("WARN", fmt.Sprintf(f, a...)) }
func (tl *TestLogger) Info(a ...interface{})             { tl.record("INFO", fmt.Sprint(a...)) }
func (tl *TestLogger) Infof(f string, a ...interface{})  { tl.record("INFO", fmt.Sprintf(f, a...)) }
func (tl *TestLogger) Debug(a ...interface{})            { tl.record("DEBUG", fmt.Sprint(a...)) }
func (tl *TestLogger) Debugf(f string, a ...interface{}) { tl.record("DEBUG", fmt.Sprintf(f, a...)) }

// WithFields returns a logger that appends the fields as key=value to
// every entry, sorted by key.
func (tl *TestLogger) WithFields(fields map[string]interface{}) logging.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(tl.fields)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	return &TestLogger{entries: tl.entries, fields: b.String()}
}

// Package notify delivers download feedback and clipboard text to the user.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is the outcome of a user-initiated operation
type Event struct {
	Success bool
	Title   string
	Detail  string
}

// NotificationSink receives success/failure feedback
type NotificationSink interface {
	Notify(event Event)
}

// ClipboardSink receives text the user asked to copy
type ClipboardSink interface {
	Copy(text string) error
}

// LogNotifier reports events through the logger
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a NotificationSink backed by logrus
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(event Event) {
	entry := n.logger.WithFields(logrus.Fields{
		"title":  event.Title,
		"detail": event.Detail,
	})
	if event.Success {
		entry.Info("Download succeeded")
		return
	}
	entry.Warn("Download failed")
}

// WriterClipboard writes copied text as a line to w (stdout for the CLI)
type WriterClipboard struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterClipboard creates a ClipboardSink writing to w
func NewWriterClipboard(w io.Writer) *WriterClipboard {
	return &WriterClipboard{w: w}
}

func (c *WriterClipboard) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, text)
	return err
}

// Recorder keeps every event and copied text, for tests
type Recorder struct {
	mu     sync.Mutex
	events []Event
	copied []string
}

func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *Recorder) Copy(text string) error {
	r.mu.Lock()
	r.copied = append(r.copied, text)
	r.mu.Unlock()
	return nil
}

// Events returns a snapshot of recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Copied returns a snapshot of copied texts
func (r *Recorder) Copied() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.copied...)
}

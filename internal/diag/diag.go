// Package diag collects the messages produced during a node resolution pass.
//
// Nothing recorded here aborts a pass. A Fatal message only tells the caller
// that the resulting document must not be trusted; refusing to use it is the
// caller's decision.
package diag

import (
	"fmt"
	"strings"

	"github.com/agentic-research/rigseq/api"
)

// Severity of a Message.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Message is one diagnostic record.
type Message struct {
	Text     string
	Severity Severity
	Keyword  api.Keyword
	Module   string
}

func (m Message) String() string {
	if m.Module == "" {
		return fmt.Sprintf("%s (keyword %s): %s", m.Severity, m.Keyword, m.Text)
	}
	return fmt.Sprintf("%s (keyword %s, module %s): %s", m.Severity, m.Keyword, m.Module, m.Text)
}

// Log is an append-only, emission-ordered message list with per-severity
// counters. The zero value is ready to use.
type Log struct {
	messages    []Message
	numErrors   int
	numWarnings int
	numOther    int
	numFatal    int
}

// Add records a message. Fatal messages count as errors as well.
func (l *Log) Add(sev Severity, text string, kw api.Keyword, module string) Message {
	m := Message{Text: text, Severity: sev, Keyword: kw, Module: module}
	l.messages = append(l.messages, m)
	switch sev {
	case Fatal:
		l.numFatal++
		l.numErrors++
	case Error:
		l.numErrors++
	case Warning:
		l.numWarnings++
	default:
		l.numOther++
	}
	return m
}

func (l *Log) NumErrors() int   { return l.numErrors }
func (l *Log) NumWarnings() int { return l.numWarnings }
func (l *Log) NumOther() int    { return l.numOther }
func (l *Log) NumFatal() int    { return l.numFatal }
func (l *Log) Len() int         { return len(l.messages) }

// Messages returns a copy of the recorded messages in emission order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Reset drops all messages and counters.
func (l *Log) Reset() {
	*l = Log{}
}

// String renders one message per line.
func (l *Log) String() string {
	var b strings.Builder
	for _, m := range l.messages {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}

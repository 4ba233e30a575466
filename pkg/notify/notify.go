// Package notify broadcasts reconcile reports to zero or more destinations.
//
// A [Session] is created once per run. It connects each destination lazily
// on first use, sends a title before the first content message, and
// isolates failures: a destination that fails to connect or send is marked
// failed and skipped for the rest of the session while the others keep
// receiving messages. Close tears every connection down and must be called
// on every exit path:
//
//	sess := notify.NewSession(logger, "Mod updates", dests...)
//	defer sess.Close()
//	sess.Post(ctx, report.Messages()...)
package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// ErrDestinationFailed is recorded for destinations that were disabled
// after a connect or send failure.
var ErrDestinationFailed = errors.New("notification destination failed")

// Destination is a place text messages can be posted to.
type Destination interface {
	// Name identifies the destination in logs. It must not contain secrets.
	Name() string
	Connect(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Close() error
}

// Limiter is implemented by destinations that cap the length of a single
// message. Longer messages are split on line boundaries.
type Limiter interface {
	MaxLen() int
}

type slot struct {
	dest      Destination
	connected bool
	err       error
}

// Session posts messages to a fixed set of destinations for one run.
// A Session is not safe for concurrent use.
type Session struct {
	Title  string
	Logger *log.Logger

	slots     []*slot
	titleSent bool
}

// NewSession creates a session. Nothing is connected until the first Post.
func NewSession(logger *log.Logger, title string, dests ...Destination) *Session {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Session{Title: title, Logger: logger}
	for _, d := range dests {
		if d == nil {
			continue
		}
		if t, ok := d.(interface{ SetTitle(string) }); ok {
			t.SetTitle(title)
		}
		s.slots = append(s.slots, &slot{dest: d})
	}
	return s
}

// Len returns the number of configured destinations.
func (s *Session) Len() int { return len(s.slots) }

// Post sends each message, in order, to every healthy destination. Empty
// messages are skipped; if nothing remains, nothing is sent at all, not
// even the title. Post returns the number of destinations still healthy.
func (s *Session) Post(ctx context.Context, messages ...string) int {
	var pending []string
	for _, m := range messages {
		if strings.TrimSpace(m) != "" {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 || len(s.slots) == 0 {
		return s.healthy()
	}
	if !s.titleSent && s.Title != "" {
		pending = append([]string{s.Title}, pending...)
	}
	s.titleSent = true

	for _, sl := range s.slots {
		for _, m := range pending {
			if !s.send(ctx, sl, m) {
				break
			}
		}
	}
	return s.healthy()
}

func (s *Session) send(ctx context.Context, sl *slot, text string) bool {
	if sl.err != nil {
		return false
	}
	name := sl.dest.Name()
	if !sl.connected {
		if err := sl.dest.Connect(ctx); err != nil {
			s.fail(sl, "connect", err)
			return false
		}
		sl.connected = true
		s.Logger.Debug("notification destination connected", "dest", name)
	}
	limit := 0
	if l, ok := sl.dest.(Limiter); ok {
		limit = l.MaxLen()
	}
	for _, chunk := range Chunk(text, limit) {
		if err := sl.dest.Send(ctx, chunk); err != nil {
			s.fail(sl, "send", err)
			return false
		}
	}
	return true
}

func (s *Session) fail(sl *slot, op string, err error) {
	sl.err = errors.Join(ErrDestinationFailed, err)
	s.Logger.Warn("notification destination disabled for this run", "dest", sl.dest.Name(), "op", op, "err", err)
}

func (s *Session) healthy() int {
	n := 0
	for _, sl := range s.slots {
		if sl.err == nil {
			n++
		}
	}
	return n
}

// Failed returns the names of destinations disabled during this session.
func (s *Session) Failed() []string {
	var out []string
	for _, sl := range s.slots {
		if sl.err != nil {
			out = append(out, sl.dest.Name())
		}
	}
	return out
}

// Close disconnects every connected destination. It is safe to call more
// than once.
func (s *Session) Close() error {
	var errs []error
	for _, sl := range s.slots {
		if !sl.connected {
			continue
		}
		sl.connected = false
		if err := sl.dest.Close(); err != nil {
			errs = append(errs, err)
			s.Logger.Debug("closing notification destination", "dest", sl.dest.Name(), "err", err)
		}
	}
	return errors.Join(errs...)
}

// Chunk splits text into pieces of at most limit bytes, breaking on line
// boundaries where possible. Hard splits never cut a UTF-8 sequence; a
// limit shorter than one rune yields that rune on its own. A limit <= 0
// returns text unchanged.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := runeCut(line, limit)
			out = append(out, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

// runeCut returns the largest offset <= limit that starts a rune in s.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(s)
	}
	return cut
}

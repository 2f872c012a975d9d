package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-contrib/sse"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// ErrTruncated is returned when the transport ends in the middle of an event.
var ErrTruncated = errors.New("stream ended with an incomplete event")

type statusPayload struct {
	Message string `json:"message"`
}

type donePayload struct {
	Screen   *domain.Screen   `json:"screen"`
	Messages []domain.Message `json:"messages"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Encode writes ev as one Server-Sent Event.
func Encode(w io.Writer, ev Event) error {
	var data any
	switch ev.Type {
	case EventStatus:
		data = statusPayload{Message: ev.Message}
	case EventDone:
		msgs := ev.Messages
		if msgs == nil {
			msgs = []domain.Message{}
		}
		data = donePayload{Screen: ev.Screen, Messages: msgs}
	case EventError:
		data = errorPayload{Error: ev.Error}
	default:
		return fmt.Errorf("encode: unknown event type %q", ev.Type)
	}
	return sse.Encode(w, sse.Event{Event: string(ev.Type), Data: data})
}

// WriteAll drains events into w until the channel closes, calling flush
// after every event so each one reaches the peer as soon as it is produced.
func WriteAll(w io.Writer, flush func(), events <-chan Event) error {
	for ev := range events {
		if err := Encode(w, ev); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
	}
	return nil
}

var (
	crlf = []byte("\r\n")
	cr   = []byte("\r")
	lf   = []byte("\n")
	sep  = []byte("\n\n")
)

// Decoder rebuilds events from arbitrarily chunked transport reads. Lines may
// end in "\n", "\r\n" or a lone "\r". An incomplete trailing fragment is
// buffered until its delimiter arrives.
type Decoder struct {
	raw []byte // bytes not yet line-normalized (a lone trailing '\r')
	buf []byte
}

// Feed appends chunk and returns every event it completed, in order.
func (d *Decoder) Feed(chunk []byte) ([]Event, error) {
	d.raw = append(d.raw, chunk...)
	cut := len(d.raw)
	if cut > 0 && d.raw[cut-1] == '\r' {
		cut--
	}
	norm := bytes.ReplaceAll(d.raw[:cut], crlf, lf)
	d.buf = append(d.buf, bytes.ReplaceAll(norm, cr, lf)...)
	d.raw = append(d.raw[:0], d.raw[cut:]...)

	var out []Event
	for {
		idx := bytes.Index(d.buf, sep)
		if idx < 0 {
			break
		}
		block := d.buf[:idx]
		ev, ok, err := parseBlock(block)
		d.buf = d.buf[idx+len(sep):]
		if err != nil {
			return out, err
		}
		if ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Pending reports whether a partial event is buffered.
func (d *Decoder) Pending() bool {
	return len(bytes.TrimSpace(d.buf)) > 0 || len(d.raw) > 0
}

// DecodeAll reads r to EOF and returns all events.
func DecodeAll(r io.Reader) ([]Event, error) {
	var (
		d   Decoder
		out []Event
		p   = make([]byte, 4096)
	)
	for {
		n, err := r.Read(p)
		if n > 0 {
			evs, ferr := d.Feed(p[:n])
			out = append(out, evs...)
			if ferr != nil {
				return out, ferr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
	}
	// A '\r' held back at EOF can only be a line end.
	if len(d.raw) > 0 {
		evs, err := d.Feed(lf)
		out = append(out, evs...)
		if err != nil {
			return out, err
		}
	}
	if d.Pending() {
		return out, ErrTruncated
	}
	return out, nil
}

func parseBlock(block []byte) (Event, bool, error) {
	var (
		name    string
		data    [][]byte
		hasData bool
	)
	for _, line := range bytes.Split(block, lf) {
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "event":
			name = string(value)
		case "data":
			data = append(data, value)
			hasData = true
		}
	}
	if name == "" && !hasData {
		return Event{}, false, nil
	}

	payload := bytes.Join(data, lf)
	ev := Event{Type: EventType(name)}
	switch ev.Type {
	case EventStatus:
		var p statusPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, false, fmt.Errorf("decode status event: %w", err)
		}
		ev.Message = p.Message
	case EventDone:
		var p donePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, false, fmt.Errorf("decode done event: %w", err)
		}
		ev.Screen = p.Screen
		ev.Messages = p.Messages
	case EventError:
		var p errorPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, false, fmt.Errorf("decode error event: %w", err)
		}
		ev.Error = p.Error
	default:
		return Event{}, false, fmt.Errorf("decode: unknown event type %q", name)
	}
	return ev, true, nil
}

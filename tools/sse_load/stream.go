package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

type stats struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	events      atomic.Int64
	heartbeats  atomic.Int64
}

type statsSnapshot struct {
	connected, connectErrs, streamErrs, events, heartbeats int64
}

func (s *stats) snapshot() statsSnapshot {
	return statsSnapshot{
		connected:   s.connected.Load(),
		connectErrs: s.connectErrs.Load(),
		streamErrs:  s.streamErrs.Load(),
		events:      s.events.Load(),
		heartbeats:  s.heartbeats.Load(),
	}
}

func (s statsSnapshot) String() string {
	return fmt.Sprintf("connected=%d connect_errs=%d stream_errs=%d events=%d heartbeats=%d",
		s.connected, s.connectErrs, s.streamErrs, s.events, s.heartbeats)
}

// consume reads an event stream until it ends. An event is counted once its
// terminating blank line arrives; comment lines count as heartbeats.
func consume(r io.Reader, st *stats) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	pending := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			if pending {
				st.events.Add(1)
				pending = false
			}
		case strings.HasPrefix(line, ":"):
			st.heartbeats.Add(1)
		case strings.HasPrefix(line, "data:"):
			pending = true
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

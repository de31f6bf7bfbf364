package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/events"
)

var (
	ledgerPollInterval = 2 * time.Second
	heartbeatInterval  = 30 * time.Second
)

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	return flusher, true
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, id uint64, event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id > 0 {
		fmt.Fprintf(w, "id: %d\n", id)
	}
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
	return nil
}

func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	if s.Quotes == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "price feed not available")
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	ticks := s.Quotes.Subscribe()
	defer s.Quotes.Unsubscribe(ticks)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	if err := writeEvent(w, flusher, 0, "prices", events.NewPriceTick(time.Now(), s.Catalog.All())); err != nil {
		s.logger.Warn("price stream initial snapshot", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, 0, "prices", tick); err != nil {
				s.logger.Warn("price stream write", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) handleLedgerStream(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "ledger journal not available")
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	// appends wake the stream up; the journal stays the source of event ids
	var appended chan domain.LedgerEvent
	if s.Ledger != nil {
		appended = s.Ledger.Subscribe()
		defer s.Ledger.Unsubscribe(appended)
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(ledgerPollInterval)
	defer pollTicker.Stop()

	account := strings.TrimSpace(r.URL.Query().Get("account"))
	lastIndex := s.parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendEvents := func() error {
		var (
			records []domain.LedgerEventRecord
			err     error
		)
		if account != "" {
			records, err = s.Journal.AccountEventsAfter(account, lastIndex)
		} else {
			records, err = s.Journal.EventsAfter(lastIndex)
		}
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := writeEvent(w, flusher, record.Index, "ledger", record.Event); err != nil {
				return err
			}
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendEvents(); err != nil {
		http.Error(w, "failed to load ledger events", http.StatusInternalServerError)
		s.logger.Error("ledger stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-appended:
			if !ok {
				appended = nil
				continue
			}
			if account != "" && event.AccountID != account {
				continue
			}
			if err := sendEvents(); err != nil {
				s.logger.Warn("ledger stream push", zap.Error(err))
			}
		case <-pollTicker.C:
			if err := sendEvents(); err != nil {
				s.logger.Warn("ledger stream poll", zap.Error(err))
			}
		}
	}
}

func (s *Server) parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		s.logger.Warn("invalid last event id", zap.String("id", idStr), zap.Error(err))
		return 0
	}
	return id
}

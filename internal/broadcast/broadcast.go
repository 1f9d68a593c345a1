// Package broadcast implements the BroadcastService: room-scoped fan-out
// and single-seat targeted emits, plus a bounded ring buffer of recent
// messages for debug/admin introspection.
package broadcast

import (
	"container/ring"
	"fmt"
	"log"
	"sync"
	"time"
)

// MessageLogCap is the frozen ring buffer capacity (spec MESSAGE_LOG_CAP).
const MessageLogCap = 50

// Sender delivers raw encoded bytes to one connected player. Implementations
// live in internal/transport; this package never imports it.
type Sender func(externalID uint64, data []byte)

// LogEntry is one ring-buffer record of an emitted message.
type LogEntry struct {
	Timestamp time.Time
	Event     string
	Target    string // "room" or an external id rendered as a string
	Data      []byte
}

// Service fans messages out to every transport bound to a table's room,
// or to one seat, logging each emission into a capped ring buffer.
type Service struct {
	mu        sync.Mutex
	tableID   string
	send      Sender
	members   map[uint64]struct{}
	logHead   *ring.Ring // oldest-unwritten slot before the buffer first wraps
	logRing   *ring.Ring
	logCount  int
}

func New(tableID string, send Sender) *Service {
	head := ring.New(MessageLogCap)
	return &Service{
		tableID: tableID,
		send:    send,
		members: make(map[uint64]struct{}),
		logHead: head,
		logRing: head,
	}
}

// Join/Leave track room membership; membership is mutated solely by the
// table actor's join/leave and hand-end sweep handlers.
func (s *Service) Join(externalID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[externalID] = struct{}{}
}

func (s *Service) Leave(externalID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, externalID)
}

// RoomEmit fans data out to every member of the table's room.
func (s *Service) RoomEmit(event string, data []byte) {
	s.mu.Lock()
	members := make([]uint64, 0, len(s.members))
	for id := range s.members {
		members = append(members, id)
	}
	s.appendLogLocked(event, "room", data)
	s.mu.Unlock()

	for _, id := range members {
		s.send(id, data)
	}
}

// SocketEmit delivers data to exactly one seat's transport.
func (s *Service) SocketEmit(externalID uint64, event string, data []byte) {
	s.mu.Lock()
	s.appendLogLocked(event, targetLabel(externalID), data)
	s.mu.Unlock()
	s.send(externalID, data)
}

func (s *Service) appendLogLocked(event, target string, data []byte) {
	s.logRing.Value = LogEntry{Timestamp: time.Now(), Event: event, Target: target, Data: data}
	s.logRing = s.logRing.Next()
	if s.logCount < MessageLogCap {
		s.logCount++
	}
}

// RecentLog returns up to MessageLogCap most recent entries, oldest first.
func (s *Service) RecentLog() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, 0, s.logCount)
	// Once the buffer has wrapped, logRing (the next write slot) also
	// holds the oldest live entry. Before that, the oldest entry is still
	// sitting at the untouched head.
	cur := s.logHead
	if s.logCount == MessageLogCap {
		cur = s.logRing
	}
	for i := 0; i < s.logCount; i++ {
		if entry, ok := cur.Value.(LogEntry); ok {
			out = append(out, entry)
		}
		cur = cur.Next()
	}
	return out
}

func targetLabel(externalID uint64) string {
	if externalID == 0 {
		return "unknown"
	}
	return fmt.Sprintf("player:%d", externalID)
}

// LogDebug writes a bracketed-tag debug line, matching the teacher's
// log.Printf convention used throughout the table actor.
func (s *Service) LogDebug(format string, args ...any) {
	log.Printf("[Broadcast %s] "+format, append([]any{s.tableID}, args...)...)
}

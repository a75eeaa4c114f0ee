package game

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Sink accepts rendered output lines for one online player. Enqueue must
// not block; it reports whether the line was accepted.
type Sink interface {
	Enqueue(line string) bool
}

// Key returns the registry key for a username. Usernames are unique
// regardless of case.
func Key(name string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

type playerEntry struct {
	name string
	room string
	sink Sink
}

// RoomView is a snapshot of a room and who is standing in it.
type RoomView struct {
	Id          string
	Name        string
	Description string
	Exits       []string
	Occupants   []string
}

// WorldState is the single source of truth for who is online and where.
// All access goes through its methods; rosters and the player table are
// changed together under one lock so no reader ever sees a player in two
// rooms or in none.
type WorldState struct {
	graph *RoomGraph

	mu      sync.RWMutex
	players map[string]*playerEntry
	rooms   map[string]map[string]struct{}
}

// NewWorldState creates an empty registry over graph.
func NewWorldState(graph *RoomGraph) *WorldState {
	return &WorldState{
		graph:   graph,
		players: make(map[string]*playerEntry),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Graph returns the static room graph.
func (w *WorldState) Graph() *RoomGraph {
	return w.graph
}

// Register puts name online in roomId. Only one session per account may be
// registered at a time.
func (w *WorldState) Register(name, roomId string, sink Sink) error {
	if !w.graph.Has(roomId) {
		return ErrUnknownRoom
	}

	key := Key(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[key]; exists {
		return ErrAlreadyOnline
	}

	w.players[key] = &playerEntry{name: name, room: roomId, sink: sink}
	w.addOccupant(roomId, key)
	return nil
}

// Move relocates name from one room to another in a single step.
func (w *WorldState) Move(name, from, to string) error {
	if !w.graph.Has(to) {
		return ErrUnknownRoom
	}

	key := Key(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[key]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.room != from {
		return ErrNotInRoom
	}

	w.removeOccupant(from, key)
	w.addOccupant(to, key)
	p.room = to
	return nil
}

// Unregister takes name offline. It returns the room the player was in
// and whether they were online at all; calling it twice is harmless.
func (w *WorldState) Unregister(name string) (string, bool) {
	key := Key(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[key]
	if !ok {
		return "", false
	}

	delete(w.players, key)
	w.removeOccupant(p.room, key)
	return p.room, true
}

// LocationOf returns the room name is in.
func (w *WorldState) LocationOf(name string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[Key(name)]
	if !ok {
		return "", false
	}
	return p.room, true
}

// Roster returns the display names of everyone in roomId, sorted.
func (w *WorldState) Roster(roomId string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.rosterLocked(roomId)
}

// Online returns the display names of everyone online, sorted.
func (w *WorldState) Online() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.players))
	for _, p := range w.players {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Sink returns the output sink registered for name.
func (w *WorldState) Sink(name string) (Sink, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[Key(name)]
	if !ok || p.sink == nil {
		return nil, false
	}
	return p.sink, true
}

// Describe combines the static room with its current roster.
func (w *WorldState) Describe(roomId string) (RoomView, bool) {
	room := w.graph.Room(roomId)
	if room == nil {
		return RoomView{}, false
	}

	return RoomView{
		Id:          roomId,
		Name:        room.Name,
		Description: room.Description,
		Exits:       w.graph.Exits(roomId),
		Occupants:   w.Roster(roomId),
	}, true
}

func (w *WorldState) rosterLocked(roomId string) []string {
	occupants := w.rooms[roomId]
	names := make([]string, 0, len(occupants))
	for key := range occupants {
		names = append(names, w.players[key].name)
	}
	sort.Strings(names)
	return names
}

func (w *WorldState) addOccupant(roomId, key string) {
	occupants, ok := w.rooms[roomId]
	if !ok {
		occupants = make(map[string]struct{})
		w.rooms[roomId] = occupants
	}
	occupants[key] = struct{}{}
}

func (w *WorldState) removeOccupant(roomId, key string) {
	occupants := w.rooms[roomId]
	delete(occupants, key)
	if len(occupants) == 0 {
		delete(w.rooms, roomId)
	}
}

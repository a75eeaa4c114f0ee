package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-errors"
)

// Room represents a location in the world. Exits map a direction to the
// id of the destination room; they need not be symmetric.
type Room struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits"`
}

// Validate satisfies storage.ValidatingSpec. Exit targets are checked
// later by NewRoomGraph, once every room is known.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}

	for dir, dest := range r.Exits {
		if strings.TrimSpace(dir) == "" {
			el.Add(fmt.Errorf("exit direction is required"))
		}
		if dest == "" {
			el.Add(fmt.Errorf("exit %s: destination is required", dir))
		}
	}

	return el.Err()
}

var directionAliases = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
	"u": "up",
	"d": "down",
}

// NormalizeDirection lowercases dir and expands single-letter shorthands.
func NormalizeDirection(dir string) string {
	dir = strings.ToLower(strings.TrimSpace(dir))
	if full, ok := directionAliases[dir]; ok {
		return full
	}
	return dir
}

// RoomGraph is the static set of rooms and exits. It is never mutated
// after NewRoomGraph returns, so it is safe to share without locking.
type RoomGraph struct {
	rooms map[string]*Room
	exits map[string]map[string]string
	start string
}

// NewRoomGraph builds the graph and verifies that the start room and every
// exit destination exist. Any error here means the world cannot run.
func NewRoomGraph(rooms map[string]*Room, start string) (*RoomGraph, error) {
	el := errors.NewErrorList()

	if len(rooms) == 0 {
		el.Add(fmt.Errorf("at least one room is required"))
	}
	if _, ok := rooms[start]; !ok {
		el.Add(fmt.Errorf("start room %q does not exist", start))
	}

	g := &RoomGraph{
		rooms: make(map[string]*Room, len(rooms)),
		exits: make(map[string]map[string]string, len(rooms)),
		start: start,
	}

	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		room := rooms[id]
		g.rooms[id] = room

		exits := make(map[string]string, len(room.Exits))
		for dir, dest := range room.Exits {
			if _, ok := rooms[dest]; !ok {
				el.Add(fmt.Errorf("room %q: exit %s leads to unknown room %q", id, dir, dest))
				continue
			}
			exits[NormalizeDirection(dir)] = dest
		}
		g.exits[id] = exits
	}

	if err := el.Err(); err != nil {
		return nil, err
	}

	return g, nil
}

// StartRoom is where new players appear.
func (g *RoomGraph) StartRoom() string {
	return g.start
}

// Room returns the room definition, or nil if id is unknown.
func (g *RoomGraph) Room(id string) *Room {
	return g.rooms[id]
}

// Has reports whether id names a room in the graph.
func (g *RoomGraph) Has(id string) bool {
	_, ok := g.rooms[id]
	return ok
}

// ResolveExit returns the room reached by leaving roomId toward direction.
func (g *RoomGraph) ResolveExit(roomId, direction string) (string, bool) {
	dest, ok := g.exits[roomId][NormalizeDirection(direction)]
	return dest, ok
}

// Exits returns the directions leading out of roomId, sorted.
func (g *RoomGraph) Exits(roomId string) []string {
	exits := g.exits[roomId]
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

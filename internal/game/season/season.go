// Package season models one play-through cycle: a guild-scoped game
// season owning a map grid and a set of provisioned chat resources, plus
// the registry that owns all seasons.
package season

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
)

// State is a season's lifecycle state.
type State int32

const (
	// StateUninitialized is a freshly constructed season.
	StateUninitialized State = iota
	// StateCreating means resource provisioning is in flight. A season in
	// this state must not be visible through the registry.
	StateCreating
	// StateActive is the normal operating state.
	StateActive
	// StateDeleting means resource teardown is in flight.
	StateDeleting
	// StateDeleted is terminal.
	StateDeleted
)

// String returns the state's name for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreating:
		return "creating"
	case StateActive:
		return "active"
	case StateDeleting:
		return "deleting"
	case StateDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ChannelHandle is an opaque reference to a provisioned channel.
type ChannelHandle struct {
	ID chat.ChannelID
	// Resolved is false when the ID no longer resolves against the
	// transport (degraded load) or has not been checked yet.
	Resolved bool
}

// RoleHandle is an opaque reference to a provisioned role.
type RoleHandle struct {
	ID       chat.RoleID
	Resolved bool
}

// Resources are the chat-platform assets a season owns.
type Resources struct {
	// Category is the parent category channel named after the season.
	Category ChannelHandle
	// MapChannel hosts the rendered map, parented to Category.
	MapChannel ChannelHandle
	// SignupsChannel accepts capital coordinates, parented to Category.
	SignupsChannel ChannelHandle
	// Role is granted to signed-up players.
	Role RoleHandle
}

// Season aggregates one map grid with season identity and provisioned
// resources. All methods are safe for concurrent use.
//
// Invariant: name and guild never change after construction. The map is
// set exactly once, during creation or deserialization.
type Season struct {
	mu      sync.Mutex
	name    string
	guild   chat.GuildID
	state   State
	res     Resources
	gameMap *gridmap.Map
}

// New constructs an uninitialized Season.
//
// Precondition: guild and name must be non-empty.
func New(guild chat.GuildID, name string) *Season {
	return &Season{name: name, guild: guild, state: StateUninitialized}
}

// Name returns the season's name, unique within its guild.
func (s *Season) Name() string { return s.name }

// Guild returns the owning guild.
func (s *Season) Guild() chat.GuildID { return s.guild }

// State returns the current lifecycle state.
func (s *Season) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Map returns the season's map grid, or nil before creation completes.
func (s *Season) Map() *gridmap.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameMap
}

// Resources returns a copy of the season's resource handles.
func (s *Season) Resources() Resources {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res
}

func (s *Season) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// transition moves the season between states, enforcing the machine's
// allowed edges.
func (s *Season) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("season %q: cannot move %s -> %s from %s", s.name, from, to, s.state)
	}
	s.state = to
	return nil
}

func (s *Season) logger(base *zap.Logger) *zap.Logger {
	return base.With(
		zap.String("guild", string(s.guild)),
		zap.String("season", s.name),
	)
}

package season

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
)

// ChannelsRecord holds the durable IDs of a season's child channels.
type ChannelsRecord struct {
	Signups string `json:"signups"`
	Map     string `json:"map"`
}

// Record is the durable, JSON-friendly form of a Season. Resource handles
// are stored as opaque platform IDs and re-resolved at load time.
type Record struct {
	Guild         string                 `json:"guild"`
	Name          string                 `json:"name"`
	ParentChannel string                 `json:"parentChannel"`
	Role          string                 `json:"role"`
	Channels      ChannelsRecord         `json:"channels"`
	Map           [][]gridmap.TileRecord `json:"map"`
}

// Key returns the record's registry key.
func (r Record) Key() Key {
	return Key{Guild: chat.GuildID(r.Guild), Name: r.Name}
}

// Record returns the season's durable form.
//
// Precondition: the season must have a map (Active, or Deleting with an
// unfinished teardown).
func (s *Season) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Record{
		Guild:         string(s.guild),
		Name:          s.name,
		ParentChannel: string(s.res.Category.ID),
		Role:          string(s.res.Role.ID),
		Channels: ChannelsRecord{
			Signups: string(s.res.SignupsChannel.ID),
			Map:     string(s.res.MapChannel.ID),
		},
		Map: s.gameMap.Snapshot(),
	}
}

// FromRecord reconstructs an Active season from its durable form. The
// resource handles start unresolved; call ResolveHandles to check them
// against the transport.
//
// Postcondition: Returns an Active season, or an error when the record's
// identity or map is unusable.
func FromRecord(rec Record, spacing int, biomes *biome.Registry) (*Season, error) {
	if rec.Guild == "" || rec.Name == "" {
		return nil, fmt.Errorf("season record missing guild or name")
	}

	m, err := gridmap.FromSnapshot(rec.Map, spacing, biomes)
	if err != nil {
		return nil, fmt.Errorf("season %q: restoring map: %w", rec.Name, err)
	}

	s := New(chat.GuildID(rec.Guild), rec.Name)
	s.gameMap = m
	s.state = StateActive
	s.res = Resources{
		Category:       ChannelHandle{ID: chat.ChannelID(rec.ParentChannel)},
		MapChannel:     ChannelHandle{ID: chat.ChannelID(rec.Channels.Map)},
		SignupsChannel: ChannelHandle{ID: chat.ChannelID(rec.Channels.Signups)},
		Role:           RoleHandle{ID: chat.RoleID(rec.Role)},
	}
	return s, nil
}

// ResolveHandles checks each stored resource ID against the transport and
// marks the ones that still resolve. A handle that no longer resolves is
// logged and left unresolved; the season stays loaded in a degraded but
// readable state.
func (s *Season) ResolveHandles(ctx context.Context, adapter chat.Adapter, logger *zap.Logger) {
	log := s.logger(logger)

	s.mu.Lock()
	res := s.res
	s.mu.Unlock()

	resolveChannel := func(kind string, h ChannelHandle) ChannelHandle {
		if h.ID == "" {
			log.Warn("season loaded without a channel handle", zap.String("kind", kind))
			return h
		}
		ok, err := adapter.ChannelExists(ctx, s.guild, h.ID)
		if err != nil {
			log.Warn("channel handle check failed",
				zap.String("kind", kind),
				zap.String("channel", string(h.ID)),
				zap.Error(err),
			)
			return h
		}
		if !ok {
			log.Warn("channel handle no longer resolves",
				zap.String("kind", kind),
				zap.String("channel", string(h.ID)),
			)
			return h
		}
		h.Resolved = true
		return h
	}

	res.Category = resolveChannel("category", res.Category)
	res.MapChannel = resolveChannel("map", res.MapChannel)
	res.SignupsChannel = resolveChannel("signups", res.SignupsChannel)

	if res.Role.ID != "" {
		ok, err := adapter.RoleExists(ctx, s.guild, res.Role.ID)
		switch {
		case err != nil:
			log.Warn("role handle check failed",
				zap.String("role", string(res.Role.ID)),
				zap.Error(err),
			)
		case !ok:
			log.Warn("role handle no longer resolves",
				zap.String("role", string(res.Role.ID)),
			)
		default:
			res.Role.Resolved = true
		}
	} else {
		log.Warn("season loaded without a role handle")
	}

	s.mu.Lock()
	s.res = res
	s.mu.Unlock()
}

package bot

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/command"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// Signup replies.
const (
	BadSignupSyntaxReply = "Make sure you're using the correct format of `(x, y)`."
	SignupSuccessReply   = "You're in!"
	InvalidSpotReply     = "Your capital is in an invalid spot. Try a different spot."
)

// parseCoordinates parses a signup message of the literal form "(x, y)".
//
// Postcondition: Returns the coordinates and true, or ok=false for any
// deviation from the expected form.
func parseCoordinates(content string) (x, y int, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "(") || !strings.HasSuffix(content, ")") {
		return 0, 0, false
	}
	content = content[1 : len(content)-1]

	parts := strings.Split(content, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// signupHandler builds the implicit handler for one season's signups
// channel: place the sender's capital and grant the season role.
func (b *Bot) signupHandler(s *season.Season) command.HandlerFunc {
	return func(ctx context.Context, req command.Request) (string, error) {
		x, y, ok := parseCoordinates(strings.Join(req.Argv, " "))
		if !ok {
			return BadSignupSyntaxReply, nil
		}

		if !s.Map().AssignCapital(gridmap.PlayerID(req.Sender), x, y) {
			return InvalidSpotReply, nil
		}

		// The capital is placed either way; a failed role grant is an
		// operator problem, not the player's.
		role := s.Resources().Role.ID
		if err := b.adapter.AddRoleToMember(ctx, req.Guild, req.Sender, role); err != nil {
			b.logger.Warn("role grant failed",
				zap.String("guild", string(req.Guild)),
				zap.String("user", string(req.Sender)),
				zap.String("role", string(role)),
				zap.Error(err),
			)
		}
		return SignupSuccessReply, nil
	}
}

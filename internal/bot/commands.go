package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/command"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// User-facing replies.
const (
	NotSuperUserReply = "You are not the super user!"
	NotAdminReply     = "You must be a server administrator to use that command."
	SetupDoneReply    = "All set! A new season has begun!"
	PermissionReply   = "I don't have permission to do that here. Check my role and try again."
	ReloadFailedReply = "Reloading failed; the previous data is still in use. Fix the stored data and try again."
)

// buildTables assembles the sudo, admin, and open command tables, in
// match order.
func (b *Bot) buildTables() []command.Table {
	return []command.Table{
		{
			Denoter: b.cfg.Bot.Denoters.Sudo,
			Verify:  b.verifySuperUser,
			Commands: command.MustRegistry([]command.Descriptor{
				{Verb: "ping", Help: "Check that the bot is listening.", Handler: b.cmdPing},
				{Verb: "stop", Help: "Shut the bot down after the close delay.", Handler: b.cmdStop},
				{Verb: "reload", Help: "Reload all seasons from storage.", Handler: b.cmdReload},
				{Verb: "save", Help: "Save all seasons to storage now.", Handler: b.cmdSave},
			}),
		},
		{
			Denoter: b.cfg.Bot.Denoters.Admin,
			Verify:  b.verifyAdmin,
			Commands: command.MustRegistry([]command.Descriptor{
				{Verb: "setup", Help: "Start a new season: setup <name> [sizeX sizeY].", Handler: b.cmdSetup},
				{Verb: "delete", Help: "End a season and delete its channels: delete <name>.", Handler: b.cmdDelete},
				{Verb: "seasons", Help: "List this server's seasons.", Handler: b.cmdSeasons},
			}),
		},
		{
			Denoter: b.cfg.Bot.Denoters.Open,
			Commands: command.MustRegistry([]command.Descriptor{
				{Verb: "view", Help: "View a season's map: view map [season].", Handler: b.cmdView},
			}),
		},
	}
}

// verifySuperUser gates the sudo table. The console sender is always
// trusted.
func (b *Bot) verifySuperUser(ctx context.Context, req command.Request) error {
	if string(req.Sender) == b.cfg.Bot.SuperUser || req.Sender == chat.ConsoleUser {
		return nil
	}
	return command.Unauthorizedf(NotSuperUserReply)
}

// verifyAdmin gates the admin table on the platform's administrator
// permission.
func (b *Bot) verifyAdmin(ctx context.Context, req command.Request) error {
	ok, err := b.adapter.MemberHasAdmin(ctx, req.Guild, req.Sender)
	if err != nil {
		return command.WrapInternal("checking administrator permission", err)
	}
	if !ok {
		return command.Unauthorizedf(NotAdminReply)
	}
	return nil
}

func (b *Bot) cmdPing(ctx context.Context, req command.Request) (string, error) {
	return "pong", nil
}

func (b *Bot) cmdStop(ctx context.Context, req command.Request) (string, error) {
	delay := b.cfg.Bot.CloseDelay
	b.stopper.RequestStop(delay)
	return fmt.Sprintf("Shutting down in %s.", delay), nil
}

func (b *Bot) cmdReload(ctx context.Context, req command.Request) (string, error) {
	opts := season.LoadOptions{
		Spacing: b.cfg.Game.CapitalSpacing,
		Biomes:  b.biomes,
		Adapter: b.adapter,
	}
	if err := b.registry.Load(ctx, b.store, opts); err != nil {
		b.logger.Error("reload failed", zap.Error(err))
		return ReloadFailedReply, nil
	}
	n, err := b.registry.Len(ctx)
	if err != nil {
		return "", command.WrapInternal("counting seasons", err)
	}
	return fmt.Sprintf("Reloaded %d season(s).", n), nil
}

func (b *Bot) cmdSave(ctx context.Context, req command.Request) (string, error) {
	if err := b.registry.Save(ctx, b.store); err != nil {
		return "", command.WrapInternal("saving seasons", err)
	}
	return "", nil
}

func (b *Bot) cmdSetup(ctx context.Context, req command.Request) (string, error) {
	name := req.Arg(1)
	if name == "" {
		return "", command.UserInputf("Please supply a season name.")
	}

	sizeX, sizeY := b.cfg.Game.SizeX, b.cfg.Game.SizeY
	if req.Arg(2) != "" || req.Arg(3) != "" {
		var err error
		sizeX, err = strconv.Atoi(req.Arg(2))
		if err != nil || sizeX < 1 {
			return "", command.UserInputf("%q is not a valid map size.", req.Arg(2))
		}
		sizeY, err = strconv.Atoi(req.Arg(3))
		if err != nil || sizeY < 1 {
			return "", command.UserInputf("%q is not a valid map size.", req.Arg(3))
		}
	}

	if _, exists, err := b.registry.Get(ctx, req.Guild, name); err != nil {
		return "", err
	} else if exists {
		return "", command.UserInputf("A season named %q already exists here.", name)
	}

	s := season.New(req.Guild, name)
	err := s.Create(ctx, b.adapter, season.CreateConfig{
		SizeX:            sizeX,
		SizeY:            sizeY,
		Spacing:          b.cfg.Game.CapitalSpacing,
		Biomes:           b.biomes,
		Rand:             b.rand,
		MaxMessageLength: b.cfg.Chat.MaxMessageLength,
	}, b.logger)
	if err != nil {
		if errors.Is(err, chat.ErrPermission) {
			return "", command.UserInputf(PermissionReply)
		}
		return "", command.WrapInternal("creating season", err)
	}

	if err := b.registry.Add(ctx, s); err != nil {
		return "", command.WrapInternal("registering season", err)
	}
	return SetupDoneReply, nil
}

func (b *Bot) cmdDelete(ctx context.Context, req command.Request) (string, error) {
	name := req.Arg(1)
	if name == "" {
		return "", command.UserInputf("Please supply a season name.")
	}

	// Remove first so lookups fail fast while teardown runs.
	s, ok, err := b.registry.Remove(ctx, req.Guild, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", command.UserInputf("There is no season named %q here.", name)
	}

	if err := s.Teardown(ctx, b.adapter, b.logger); err != nil {
		return "", command.WrapInternal("tearing down season", err)
	}
	return fmt.Sprintf("Season %q has ended.", name), nil
}

func (b *Bot) cmdSeasons(ctx context.Context, req command.Request) (string, error) {
	seasons, err := b.registry.ByGuild(ctx, req.Guild)
	if err != nil {
		return "", err
	}
	if len(seasons) == 0 {
		return "There are no seasons here yet.", nil
	}
	names := make([]string, len(seasons))
	for i, s := range seasons {
		names[i] = s.Name()
	}
	return "Seasons here: " + strings.Join(names, ", "), nil
}

func (b *Bot) cmdView(ctx context.Context, req command.Request) (string, error) {
	if req.Arg(1) != "map" {
		return "", command.UserInputf("Try `%sview map [season]`.", b.cfg.Bot.Denoters.Open)
	}

	name := req.Arg(2)
	if name == "" {
		seasons, err := b.registry.ByGuild(ctx, req.Guild)
		if err != nil {
			return "", err
		}
		switch len(seasons) {
		case 0:
			return "", command.UserInputf("There are no seasons here yet.")
		case 1:
			return seasons[0].Map().Render(), nil
		default:
			return "", command.UserInputf("There are multiple seasons here; name one.")
		}
	}

	s, ok, err := b.registry.Get(ctx, req.Guild, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", command.UserInputf("There is no season named %q here.", name)
	}
	return s.Map().Render(), nil
}

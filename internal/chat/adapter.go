// Package chat defines the transport adapter the bot drives. The actual
// chat-platform client lives behind the Adapter interface; the bot core
// never imports a platform SDK.
package chat

import (
	"context"
	"errors"
)

// GuildID identifies a guild (server) on the chat platform.
type GuildID string

// ChannelID identifies a channel. Opaque to the bot core.
type ChannelID string

// RoleID identifies a role. Opaque to the bot core.
type RoleID string

// UserID identifies a platform user.
type UserID string

// Message is one incoming chat message event.
type Message struct {
	// Guild is the guild the message originated in. Empty for direct or
	// console messages.
	Guild GuildID
	// Channel is the channel the message was sent to.
	Channel ChannelID
	// Sender is the message author.
	Sender UserID
	// SenderName is the author's display name, for logging.
	SenderName string
	// Content is the raw message text.
	Content string
}

// ErrPermission is returned by an Adapter when the platform denies an
// operation for lack of permission. Provisioning failures branch on it to
// phrase admin-facing replies.
var ErrPermission = errors.New("missing permission")

// Adapter is the chat-platform client the bot operates through.
//
// Implementations must be safe for concurrent use. Every method that talks
// to the platform takes a context and honors its cancellation.
type Adapter interface {
	// Events returns the stream of incoming messages. The channel is
	// closed when the adapter shuts down.
	Events() <-chan Message

	// Reply sends content to a channel.
	Reply(ctx context.Context, channel ChannelID, content string) error

	// CreateCategory creates a category channel and returns its ID.
	CreateCategory(ctx context.Context, guild GuildID, name string) (ChannelID, error)

	// CreateTextChannel creates a text channel parented to the given
	// category and returns its ID.
	CreateTextChannel(ctx context.Context, guild GuildID, name string, parent ChannelID) (ChannelID, error)

	// CreateRole creates a role and returns its ID.
	CreateRole(ctx context.Context, guild GuildID, name string) (RoleID, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(ctx context.Context, guild GuildID, channel ChannelID) error

	// DeleteRole deletes a role.
	DeleteRole(ctx context.Context, guild GuildID, role RoleID) error

	// ChannelExists reports whether a channel ID still resolves.
	ChannelExists(ctx context.Context, guild GuildID, channel ChannelID) (bool, error)

	// RoleExists reports whether a role ID still resolves.
	RoleExists(ctx context.Context, guild GuildID, role RoleID) (bool, error)

	// MemberHasAdmin reports whether a guild member holds administrator
	// permission.
	MemberHasAdmin(ctx context.Context, guild GuildID, user UserID) (bool, error)

	// AddRoleToMember grants a role to a guild member.
	AddRoleToMember(ctx context.Context, guild GuildID, user UserID, role RoleID) error

	// Close releases the adapter's resources and closes the event stream.
	Close()
}

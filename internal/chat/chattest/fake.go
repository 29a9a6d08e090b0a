// Package chattest provides an in-memory chat.Adapter for tests.
package chattest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
)

// Reply records one delivered reply.
type Reply struct {
	Channel chat.ChannelID
	Content string
}

// Channel records one provisioned channel.
type Channel struct {
	Guild    chat.GuildID
	Name     string
	Parent   chat.ChannelID
	Category bool
}

// Role records one provisioned role.
type Role struct {
	Guild chat.GuildID
	Name  string
}

// Fake is an in-memory chat.Adapter. Provisioned resources get generated
// IDs; replies and role grants are recorded for assertions. Individual
// operations can be scripted to fail by resource name.
type Fake struct {
	mu       sync.Mutex
	events   chan chat.Message
	closed   bool
	channels map[chat.ChannelID]Channel
	roles    map[chat.RoleID]Role
	admins   map[chat.GuildID]map[chat.UserID]bool
	grants   map[chat.UserID][]chat.RoleID
	replies  []Reply

	// createErrs maps a channel/role name to the error its creation
	// should return. Consumed per lookup, not per call.
	createErrs map[string]error
	// replyHook, when set, intercepts Reply calls.
	replyHook func(channel chat.ChannelID, content string) error
	// deleteErr, when set, fails every delete call.
	deleteErr error
}

// NewFake creates an empty Fake adapter.
func NewFake() *Fake {
	return &Fake{
		events:     make(chan chat.Message, 16),
		channels:   make(map[chat.ChannelID]Channel),
		roles:      make(map[chat.RoleID]Role),
		admins:     make(map[chat.GuildID]map[chat.UserID]bool),
		grants:     make(map[chat.UserID][]chat.RoleID),
		createErrs: make(map[string]error),
	}
}

// FailCreate scripts creation of the named channel or role to fail.
func (f *Fake) FailCreate(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErrs[name] = err
}

// FailDeletes scripts every delete call to fail with err.
func (f *Fake) FailDeletes(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

// SetReplyHook intercepts Reply calls; a nil hook restores recording-only
// behavior.
func (f *Fake) SetReplyHook(hook func(channel chat.ChannelID, content string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyHook = hook
}

// MakeAdmin marks user as holding administrator permission in guild.
func (f *Fake) MakeAdmin(guild chat.GuildID, user chat.UserID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admins[guild] == nil {
		f.admins[guild] = make(map[chat.UserID]bool)
	}
	f.admins[guild][user] = true
}

// Inject delivers a message on the event stream.
func (f *Fake) Inject(msg chat.Message) {
	f.events <- msg
}

// Replies returns all recorded replies in delivery order.
func (f *Fake) Replies() []Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Reply, len(f.replies))
	copy(out, f.replies)
	return out
}

// LastReply returns the most recent reply.
//
// Postcondition: Returns (reply, true), or (zero, false) when nothing was
// replied yet.
func (f *Fake) LastReply() (Reply, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return Reply{}, false
	}
	return f.replies[len(f.replies)-1], true
}

// Channels returns a copy of all live provisioned channels.
func (f *Fake) Channels() map[chat.ChannelID]Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[chat.ChannelID]Channel, len(f.channels))
	for id, ch := range f.channels {
		out[id] = ch
	}
	return out
}

// Roles returns a copy of all live provisioned roles.
func (f *Fake) Roles() map[chat.RoleID]Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[chat.RoleID]Role, len(f.roles))
	for id, r := range f.roles {
		out[id] = r
	}
	return out
}

// GrantedRoles returns the roles granted to user, in grant order.
func (f *Fake) GrantedRoles(user chat.UserID) []chat.RoleID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chat.RoleID, len(f.grants[user]))
	copy(out, f.grants[user])
	return out
}

// Events implements chat.Adapter.
func (f *Fake) Events() <-chan chat.Message {
	return f.events
}

// Reply implements chat.Adapter, recording the reply.
func (f *Fake) Reply(_ context.Context, channel chat.ChannelID, content string) error {
	f.mu.Lock()
	hook := f.replyHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(channel, content); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, Reply{Channel: channel, Content: content})
	return nil
}

// CreateCategory implements chat.Adapter.
func (f *Fake) CreateCategory(_ context.Context, guild chat.GuildID, name string) (chat.ChannelID, error) {
	return f.createChannel(guild, name, "", true)
}

// CreateTextChannel implements chat.Adapter.
func (f *Fake) CreateTextChannel(_ context.Context, guild chat.GuildID, name string, parent chat.ChannelID) (chat.ChannelID, error) {
	return f.createChannel(guild, name, parent, false)
}

// CreateRole implements chat.Adapter.
func (f *Fake) CreateRole(_ context.Context, guild chat.GuildID, name string) (chat.RoleID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.createErrs[name]; ok {
		return "", err
	}
	id := chat.RoleID(uuid.NewString())
	f.roles[id] = Role{Guild: guild, Name: name}
	return id, nil
}

// DeleteChannel implements chat.Adapter.
func (f *Fake) DeleteChannel(_ context.Context, _ chat.GuildID, channel chat.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.channels[channel]; !ok {
		return fmt.Errorf("channel %q does not exist", channel)
	}
	delete(f.channels, channel)
	return nil
}

// DeleteRole implements chat.Adapter.
func (f *Fake) DeleteRole(_ context.Context, _ chat.GuildID, role chat.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.roles[role]; !ok {
		return fmt.Errorf("role %q does not exist", role)
	}
	delete(f.roles, role)
	return nil
}

// ChannelExists implements chat.Adapter.
func (f *Fake) ChannelExists(_ context.Context, _ chat.GuildID, channel chat.ChannelID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.channels[channel]
	return ok, nil
}

// RoleExists implements chat.Adapter.
func (f *Fake) RoleExists(_ context.Context, _ chat.GuildID, role chat.RoleID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.roles[role]
	return ok, nil
}

// MemberHasAdmin implements chat.Adapter.
func (f *Fake) MemberHasAdmin(_ context.Context, guild chat.GuildID, user chat.UserID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[guild][user], nil
}

// AddRoleToMember implements chat.Adapter.
func (f *Fake) AddRoleToMember(_ context.Context, _ chat.GuildID, user chat.UserID, role chat.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role]; !ok {
		return fmt.Errorf("role %q does not exist", role)
	}
	f.grants[user] = append(f.grants[user], role)
	return nil
}

// Close implements chat.Adapter.
func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
}

func (f *Fake) createChannel(guild chat.GuildID, name string, parent chat.ChannelID, category bool) (chat.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.createErrs[name]; ok {
		return "", err
	}
	id := chat.ChannelID(uuid.NewString())
	f.channels[id] = Channel{Guild: guild, Name: name, Parent: parent, Category: category}
	return id, nil
}

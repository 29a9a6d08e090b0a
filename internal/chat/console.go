package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Console identity used for messages entered on stdin.
const (
	ConsoleGuild   GuildID   = "console"
	ConsoleChannel ChannelID = "console"
	ConsoleUser    UserID    = "[console]"
)

// ConsoleAdapter is an Adapter backed by a local reader/writer pair. It
// lets an operator drive the bot from a terminal: every input line becomes
// a message from ConsoleUser, replies are printed to the writer, and
// provisioning calls are simulated with generated IDs.
type ConsoleAdapter struct {
	mu        sync.Mutex
	events    chan Message
	done      chan struct{}
	out       io.Writer
	channels  map[ChannelID]string
	roles     map[RoleID]string
	closeOnce sync.Once
}

// NewConsoleAdapter creates a ConsoleAdapter reading messages from r and
// printing replies to w. The event stream is closed when r is exhausted
// or the adapter is closed.
func NewConsoleAdapter(r io.Reader, w io.Writer) *ConsoleAdapter {
	a := &ConsoleAdapter{
		events:   make(chan Message),
		done:     make(chan struct{}),
		out:      w,
		channels: make(map[ChannelID]string),
		roles:    make(map[RoleID]string),
	}
	go a.readLoop(r)
	return a
}

func (a *ConsoleAdapter) readLoop(r io.Reader) {
	defer close(a.events)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		msg := Message{
			Guild:      ConsoleGuild,
			Channel:    ConsoleChannel,
			Sender:     ConsoleUser,
			SenderName: string(ConsoleUser),
			Content:    scanner.Text(),
		}
		select {
		case a.events <- msg:
		case <-a.done:
			return
		}
	}
}

// Events returns the stream of console input lines as messages.
func (a *ConsoleAdapter) Events() <-chan Message {
	return a.events
}

// Reply prints content to the console writer.
func (a *ConsoleAdapter) Reply(_ context.Context, channel ChannelID, content string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := fmt.Fprintf(a.out, "[%s] %s\n", channel, content)
	return err
}

// CreateCategory simulates category creation with a generated ID.
func (a *ConsoleAdapter) CreateCategory(_ context.Context, _ GuildID, name string) (ChannelID, error) {
	return a.trackChannel(name), nil
}

// CreateTextChannel simulates text-channel creation with a generated ID.
func (a *ConsoleAdapter) CreateTextChannel(_ context.Context, _ GuildID, name string, _ ChannelID) (ChannelID, error) {
	return a.trackChannel(name), nil
}

// CreateRole simulates role creation with a generated ID.
func (a *ConsoleAdapter) CreateRole(_ context.Context, _ GuildID, name string) (RoleID, error) {
	id := RoleID(uuid.NewString())
	a.mu.Lock()
	a.roles[id] = name
	a.mu.Unlock()
	return id, nil
}

// DeleteChannel forgets a simulated channel.
func (a *ConsoleAdapter) DeleteChannel(_ context.Context, _ GuildID, channel ChannelID) error {
	a.mu.Lock()
	delete(a.channels, channel)
	a.mu.Unlock()
	return nil
}

// DeleteRole forgets a simulated role.
func (a *ConsoleAdapter) DeleteRole(_ context.Context, _ GuildID, role RoleID) error {
	a.mu.Lock()
	delete(a.roles, role)
	a.mu.Unlock()
	return nil
}

// ChannelExists reports whether the simulated channel is still tracked.
func (a *ConsoleAdapter) ChannelExists(_ context.Context, _ GuildID, channel ChannelID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.channels[channel]
	return ok, nil
}

// RoleExists reports whether the simulated role is still tracked.
func (a *ConsoleAdapter) RoleExists(_ context.Context, _ GuildID, role RoleID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.roles[role]
	return ok, nil
}

// MemberHasAdmin treats the console operator as an administrator.
func (a *ConsoleAdapter) MemberHasAdmin(_ context.Context, _ GuildID, user UserID) (bool, error) {
	return user == ConsoleUser, nil
}

// AddRoleToMember is a no-op for the console.
func (a *ConsoleAdapter) AddRoleToMember(_ context.Context, _ GuildID, _ UserID, _ RoleID) error {
	return nil
}

// Close stops the read loop. The event stream closes once the loop exits;
// a loop blocked on a terminal read exits at its next delivered line.
func (a *ConsoleAdapter) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

func (a *ConsoleAdapter) trackChannel(name string) ChannelID {
	id := ChannelID(uuid.NewString())
	a.mu.Lock()
	a.channels[id] = name
	a.mu.Unlock()
	return id
}

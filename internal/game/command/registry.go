// Package command provides the command-dispatch pipeline: tagged errors,
// line parsing, descriptor registries, and the dispatcher that gates and
// executes commands against game state.
package command

import (
	"context"
	"fmt"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
)

// Request carries the parsed invocation context into a handler.
type Request struct {
	// Argv is the argument vector; Argv[0] is the verb.
	Argv []string
	// Sender is the invoking user.
	Sender chat.UserID
	// SenderName is the invoking user's display name, for logging.
	SenderName string
	// Guild is the guild the command was issued in.
	Guild chat.GuildID
	// Channel is the channel the command was issued in.
	Channel chat.ChannelID
}

// Arg returns Argv[i], or "" when the vector is shorter.
func (r Request) Arg(i int) string {
	if i >= len(r.Argv) {
		return ""
	}
	return r.Argv[i]
}

// HandlerFunc executes a command and returns the reply text. An empty
// reply with a nil error is acknowledged generically by the dispatcher.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Descriptor defines one invocable command.
type Descriptor struct {
	// Verb is the canonical command name.
	Verb string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Handler executes the command.
	Handler HandlerFunc
}

// Registry maps verbs and aliases to command Descriptors.
type Registry struct {
	commands map[string]*Descriptor // canonical verb → descriptor
	aliases  map[string]string      // alias → canonical verb
}

// NewRegistry creates a Registry populated with the given descriptors.
//
// Precondition: no two descriptors may share a verb or alias; every
// descriptor must have a non-nil Handler.
// Postcondition: Returns a Registry or an error on collisions.
func NewRegistry(cmds []Descriptor) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Descriptor, len(cmds)),
		aliases:  make(map[string]string),
	}

	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Handler == nil {
			return nil, fmt.Errorf("command %q has no handler", cmd.Verb)
		}
		if _, exists := r.commands[cmd.Verb]; exists {
			return nil, fmt.Errorf("duplicate command verb: %q", cmd.Verb)
		}
		if _, exists := r.aliases[cmd.Verb]; exists {
			return nil, fmt.Errorf("command verb %q conflicts with an existing alias", cmd.Verb)
		}
		r.commands[cmd.Verb] = cmd

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with command verb %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Verb)
			}
			r.aliases[alias] = cmd.Verb
		}
	}

	return r, nil
}

// MustRegistry creates a Registry and panics on collisions. Useful for
// static command tables.
func MustRegistry(cmds []Descriptor) *Registry {
	r, err := NewRegistry(cmds)
	if err != nil {
		panic(fmt.Sprintf("building command registry: %v", err))
	}
	return r
}

// Resolve looks up a command by verb or alias.
//
// Postcondition: Returns (descriptor, true) if found, or (nil, false).
func (r *Registry) Resolve(verb string) (*Descriptor, bool) {
	if cmd, ok := r.commands[verb]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[verb]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered descriptors in no particular order.
func (r *Registry) Commands() []*Descriptor {
	result := make([]*Descriptor, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	return result
}

package command

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
)

// Canned dispatcher replies.
const (
	// UnknownReply answers an unrecognized verb.
	UnknownReply = "Sorry, I don't understand that command."
	// AckReply answers a successful command that produced no output.
	AckReply = "Done!"
	// FailureReply answers an internal execution failure. The underlying
	// cause never reaches the chat surface.
	FailureReply = "Sorry, something went wrong running that command."
)

// VerifyFunc is the authorization predicate gating a command table. It may
// consult external state through the context's deadline. A returned error's
// user message is replied verbatim and the command is never executed.
type VerifyFunc func(ctx context.Context, req Request) error

// Table binds a denoter prefix to a verified command registry.
type Table struct {
	// Denoter is the prefix string identifying this table, e.g. "##".
	Denoter string
	// Verify gates every command in the table. Nil means no verification.
	Verify VerifyFunc
	// Commands is the verb registry for this table.
	Commands *Registry
}

// Dispatcher routes incoming messages to command tables, runs
// verification, executes the matched command, and replies with the result
// chunked to the transport's message-size limit.
type Dispatcher struct {
	adapter chat.Adapter
	tables  []Table
	maxLen  int
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given tables. Tables are
// consulted in order; the first denoter that prefixes a message wins.
//
// Precondition: adapter and logger must be non-nil; maxLen must be at
// least len(chat.LineOmissionNotice); every table needs a non-empty
// denoter and a non-nil registry.
func NewDispatcher(adapter chat.Adapter, tables []Table, maxLen int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		adapter: adapter,
		tables:  tables,
		maxLen:  maxLen,
		logger:  logger,
	}
}

// Dispatch routes one message.
//
// Postcondition: Returns true if a table's denoter matched (whether or not
// the command succeeded), false if the message is not a denoted command.
func (d *Dispatcher) Dispatch(ctx context.Context, msg chat.Message) bool {
	for _, table := range d.tables {
		if !strings.HasPrefix(msg.Content, table.Denoter) {
			continue
		}

		parsed := Parse(table.Denoter, msg.Content)
		req := Request{
			Argv:       parsed.Argv,
			Sender:     msg.Sender,
			SenderName: msg.SenderName,
			Guild:      msg.Guild,
			Channel:    msg.Channel,
		}

		if table.Verify != nil {
			if err := table.Verify(ctx, req); err != nil {
				// Not a failure of ours: reply with the reason and drop
				// the command.
				d.reply(ctx, msg.Channel, UserMessage(err))
				return true
			}
		}

		desc, ok := table.Commands.Resolve(parsed.Verb)
		if !ok {
			d.reply(ctx, msg.Channel, UnknownReply)
			return true
		}

		d.execute(ctx, msg, desc.Handler, req)
		return true
	}
	return false
}

// RunImplicit executes a handler outside any table, e.g. the signup
// channel's free-text coordinate command. The message content is
// whitespace-split into the argument vector.
func (d *Dispatcher) RunImplicit(ctx context.Context, msg chat.Message, handler HandlerFunc) {
	req := Request{
		Argv:       strings.Fields(msg.Content),
		Sender:     msg.Sender,
		SenderName: msg.SenderName,
		Guild:      msg.Guild,
		Channel:    msg.Channel,
	}
	d.execute(ctx, msg, handler, req)
}

func (d *Dispatcher) execute(ctx context.Context, msg chat.Message, handler HandlerFunc, req Request) {
	out, err := handler(ctx, req)
	if err != nil {
		switch KindOf(err) {
		case KindUserInput, KindUnauthorized:
			d.reply(ctx, msg.Channel, UserMessage(err))
		default:
			d.logger.Error("command execution failed",
				zap.String("verb", req.Arg(0)),
				zap.String("sender", string(req.Sender)),
				zap.String("sender_name", req.SenderName),
				zap.String("guild", string(req.Guild)),
				zap.String("channel", string(req.Channel)),
				zap.Error(err),
			)
			d.reply(ctx, msg.Channel, FailureReply)
		}
		return
	}

	if out == "" {
		out = AckReply
	}
	d.reply(ctx, msg.Channel, out)
}

func (d *Dispatcher) reply(ctx context.Context, channel chat.ChannelID, content string) {
	err := chat.SendChunked(ctx, func(ctx context.Context, chunk string) error {
		return d.adapter.Reply(ctx, channel, chunk)
	}, content, d.maxLen, d.logger)
	if err != nil {
		d.logger.Error("reply delivery failed",
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
	}
}

package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat/chattest"
)

func testDispatcher(t *testing.T, fake *chattest.Fake, tables []Table) *Dispatcher {
	t.Helper()
	return NewDispatcher(fake, tables, 2000, zap.NewNop())
}

func sudoTable(superUser chat.UserID, extra ...Descriptor) Table {
	cmds := append([]Descriptor{
		{Verb: "ping", Help: "Health check", Handler: func(ctx context.Context, req Request) (string, error) {
			return "pong", nil
		}},
	}, extra...)
	return Table{
		Denoter: "##",
		Verify: func(ctx context.Context, req Request) error {
			if req.Sender != superUser {
				return Unauthorizedf("You are not the super user!")
			}
			return nil
		},
		Commands: MustRegistry(cmds),
	}
}

func TestDispatchPing(t *testing.T) {
	fake := chattest.NewFake()
	d := testDispatcher(t, fake, []Table{sudoTable("root")})

	handled := d.Dispatch(context.Background(), chat.Message{
		Channel: "ch", Sender: "root", Content: "##ping",
	})

	require.True(t, handled)
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, "pong", reply.Content)
}

func TestDispatchUnknownVerb(t *testing.T) {
	fake := chattest.NewFake()
	d := testDispatcher(t, fake, []Table{sudoTable("root")})

	handled := d.Dispatch(context.Background(), chat.Message{
		Channel: "ch", Sender: "root", Content: "##bogus",
	})

	require.True(t, handled)
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, UnknownReply, reply.Content)
}

func TestDispatchVerificationFailure(t *testing.T) {
	fake := chattest.NewFake()
	executed := false
	table := sudoTable("root", Descriptor{
		Verb: "stop",
		Handler: func(ctx context.Context, req Request) (string, error) {
			executed = true
			return "", nil
		},
	})
	d := testDispatcher(t, fake, []Table{table})

	handled := d.Dispatch(context.Background(), chat.Message{
		Channel: "ch", Sender: "intruder", Content: "##stop",
	})

	require.True(t, handled)
	assert.False(t, executed, "verification failure must prevent execution")
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, "You are not the super user!", reply.Content)
}

func TestDispatchNoDenoterMatch(t *testing.T) {
	fake := chattest.NewFake()
	d := testDispatcher(t, fake, []Table{sudoTable("root")})

	handled := d.Dispatch(context.Background(), chat.Message{
		Channel: "ch", Sender: "root", Content: "just chatting",
	})

	assert.False(t, handled)
	assert.Empty(t, fake.Replies())
}

func TestDispatchFirstMatchingTableWins(t *testing.T) {
	fake := chattest.NewFake()
	tables := []Table{
		{
			Denoter: "##",
			Commands: MustRegistry([]Descriptor{{Verb: "go", Handler: func(ctx context.Context, req Request) (string, error) {
				return "sudo table", nil
			}}}),
		},
		{
			Denoter: "#",
			Commands: MustRegistry([]Descriptor{{Verb: "go", Handler: func(ctx context.Context, req Request) (string, error) {
				return "other table", nil
			}}}),
		},
	}
	d := testDispatcher(t, fake, tables)

	d.Dispatch(context.Background(), chat.Message{Channel: "ch", Content: "##go"})
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, "sudo table", reply.Content)
}

func TestDispatchUserInputErrorRepliedVerbatim(t *testing.T) {
	fake := chattest.NewFake()
	table := Table{
		Denoter: "!",
		Commands: MustRegistry([]Descriptor{{Verb: "setup", Handler: func(ctx context.Context, req Request) (string, error) {
			return "", UserInputf("Please supply a season name.")
		}}}),
	}
	d := testDispatcher(t, fake, []Table{table})

	d.Dispatch(context.Background(), chat.Message{Channel: "ch", Content: "!setup"})
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, "Please supply a season name.", reply.Content)
}

func TestDispatchInternalErrorHiddenFromUser(t *testing.T) {
	fake := chattest.NewFake()
	table := Table{
		Denoter: "!",
		Commands: MustRegistry([]Descriptor{{Verb: "explode", Handler: func(ctx context.Context, req Request) (string, error) {
			return "", errors.New("pool exhausted: secret dsn")
		}}}),
	}
	d := testDispatcher(t, fake, []Table{table})

	d.Dispatch(context.Background(), chat.Message{Channel: "ch", Content: "!explode"})
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, FailureReply, reply.Content)
	assert.NotContains(t, reply.Content, "secret")
}

func TestDispatchEmptyOutputAcknowledged(t *testing.T) {
	fake := chattest.NewFake()
	table := Table{
		Denoter: "##",
		Commands: MustRegistry([]Descriptor{{Verb: "save", Handler: func(ctx context.Context, req Request) (string, error) {
			return "", nil
		}}}),
	}
	d := testDispatcher(t, fake, []Table{table})

	d.Dispatch(context.Background(), chat.Message{Channel: "ch", Content: "##save"})
	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, AckReply, reply.Content)
}

func TestDispatchLongOutputIsChunked(t *testing.T) {
	fake := chattest.NewFake()
	row := strings.Repeat(":green_square:", 100)
	body := strings.Join([]string{row, row, row}, "\n")

	table := Table{
		Denoter: "/",
		Commands: MustRegistry([]Descriptor{{Verb: "view", Handler: func(ctx context.Context, req Request) (string, error) {
			return body, nil
		}}}),
	}
	d := NewDispatcher(fake, []Table{table}, 2000, zap.NewNop())

	d.Dispatch(context.Background(), chat.Message{Channel: "ch", Content: "/view map"})

	replies := fake.Replies()
	require.Greater(t, len(replies), 1, "body longer than the limit must be split")
	for _, r := range replies {
		assert.LessOrEqual(t, len(r.Content), 2000)
	}
	var parts []string
	for _, r := range replies {
		parts = append(parts, r.Content)
	}
	assert.Equal(t, body, strings.Join(parts, "\n"))
}

func TestRunImplicit(t *testing.T) {
	fake := chattest.NewFake()
	d := testDispatcher(t, fake, nil)

	d.RunImplicit(context.Background(), chat.Message{
		Channel: "signups", Sender: "alice", Content: "(3, 4)",
	}, func(ctx context.Context, req Request) (string, error) {
		assert.Equal(t, []string{"(3,", "4)"}, req.Argv)
		return "You're in!", nil
	})

	reply, ok := fake.LastReply()
	require.True(t, ok)
	assert.Equal(t, "You're in!", reply.Content)
}

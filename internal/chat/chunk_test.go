package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func TestChunkEmptyBody(t *testing.T) {
	assert.Empty(t, Chunk("", 100))
}

func TestChunkShortBodySingleChunk(t *testing.T) {
	chunks := Chunk("hello\nworld", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello\nworld", chunks[0])
}

func TestChunkSplitsOnLineBoundaries(t *testing.T) {
	body := "aaaa\nbbbb\ncccc"
	chunks := Chunk(body, 9)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa\nbbbb", chunks[0])
	assert.Equal(t, "cccc", chunks[1])
}

func TestChunkReplacesOverlongLine(t *testing.T) {
	long := strings.Repeat("x", 200)
	chunks := Chunk("short\n"+long+"\nalso short", 100)

	joined := strings.Join(chunks, "\n")
	assert.NotContains(t, joined, long)
	assert.Contains(t, joined, LineOmissionNotice)
	assert.Contains(t, joined, "short")
	assert.Contains(t, joined, "also short")
}

func TestPropertyChunking(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(len(LineOmissionNotice), 300).Draw(t, "max")
		lineCount := rapid.IntRange(1, 40).Draw(t, "lineCount")

		lines := make([]string, lineCount)
		for i := range lines {
			lines[i] = rapid.StringMatching(`[a-zA-Z0-9 ]{0,400}`).Draw(t, "line")
		}
		body := strings.Join(lines, "\n")

		chunks := Chunk(body, max)

		// No chunk exceeds the maximum.
		for i, c := range chunks {
			if len(c) > max {
				t.Fatalf("chunk %d has length %d > max %d", i, len(c), max)
			}
		}

		// Reassembly reproduces the line sequence, with over-length lines
		// replaced by the placeholder.
		want := make([]string, lineCount)
		for i, line := range lines {
			if len(line) > max {
				want[i] = LineOmissionNotice
			} else {
				want[i] = line
			}
		}
		got := strings.Split(strings.Join(chunks, "\n"), "\n")
		if len(got) != len(want) {
			t.Fatalf("reassembled %d lines, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestSendChunkedDeliversInOrder(t *testing.T) {
	var delivered []string
	send := func(ctx context.Context, content string) error {
		delivered = append(delivered, content)
		return nil
	}

	body := "aaaa\nbbbb\ncccc\ndddd"
	err := SendChunked(context.Background(), send, body, 9, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"aaaa\nbbbb", "cccc\ndddd"}, delivered)
}

func TestSendChunkedContinuesAfterFailure(t *testing.T) {
	var delivered []string
	failed := false
	send := func(ctx context.Context, content string) error {
		if content == "bbbb" && !failed {
			failed = true
			return errors.New("rate limited")
		}
		delivered = append(delivered, content)
		return nil
	}

	err := SendChunked(context.Background(), send, "aaaa\nbbbb\ncccc", 4, zap.NewNop())
	require.Error(t, err)

	// The failed chunk triggers one fallback notice; the rest still arrive.
	assert.Equal(t, []string{"aaaa", deliveryFailureNotice, "cccc"}, delivered)
}

func TestSendChunkedStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	send := func(ctx context.Context, content string) error {
		calls++
		return nil
	}

	err := SendChunked(ctx, send, "aaaa\nbbbb", 4, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, 0, calls)
}

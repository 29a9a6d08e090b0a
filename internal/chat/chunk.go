package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// LineOmissionNotice replaces any single line that exceeds the maximum
// chunk size. The whole line is dropped and announced, never truncated.
const LineOmissionNotice = "[ Line of text omitted from message due to its length. ]"

// deliveryFailureNotice is sent in place of a chunk whose delivery failed.
const deliveryFailureNotice = "[ Part of this message could not be delivered. ]"

// SendFunc delivers one chunk of a message.
type SendFunc func(ctx context.Context, content string) error

// Chunk splits body into pieces no longer than max characters.
//
// Splitting happens on line boundaries only: any single line longer than
// max is replaced with LineOmissionNotice, then consecutive lines are
// greedily packed into chunks. Joining the chunks with newlines
// reproduces the original line sequence, modulo omitted lines.
//
// Precondition: max must be at least len(LineOmissionNotice).
// Postcondition: No returned chunk exceeds max characters. An empty body
// yields no chunks.
func Chunk(body string, max int) []string {
	if body == "" {
		return nil
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if len(line) > max {
			lines[i] = LineOmissionNotice
		}
	}

	var chunks []string
	current := lines[0]
	for _, line := range lines[1:] {
		if len(current)+1+len(line) > max {
			chunks = append(chunks, current)
			current = line
		} else {
			current += "\n" + line
		}
	}
	return append(chunks, current)
}

// SendChunked splits body with Chunk and delivers the chunks strictly in
// order, each send starting only after the previous one settled.
//
// A chunk's delivery failure is logged and a fallback notice is attempted
// once for it; remaining chunks still attempt delivery.
//
// Postcondition: Returns nil if every chunk was delivered, or the joined
// delivery errors otherwise.
func SendChunked(ctx context.Context, send SendFunc, body string, max int, logger *zap.Logger) error {
	var errs []error
	for i, chunk := range Chunk(body, max) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("delivery cancelled at chunk %d: %w", i, err))
			break
		}

		err := send(ctx, chunk)
		if err == nil {
			continue
		}

		logger.Error("chunk delivery failed",
			zap.Int("chunk", i),
			zap.Int("length", len(chunk)),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("chunk %d: %w", i, err))

		if fallbackErr := send(ctx, deliveryFailureNotice); fallbackErr != nil {
			logger.Error("fallback notice delivery failed",
				zap.Int("chunk", i),
				zap.Error(fallbackErr),
			)
		}
	}
	return errors.Join(errs...)
}

package autoadd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Comment is one entry of an external comment feed.
type Comment struct {
	// Timestamp is the displayed position, MM:SS or H:MM:SS.
	Timestamp string
	Text      string
}

// Feed yields the comments currently visible for a media item.
type Feed interface {
	Comments(ctx context.Context) ([]Comment, error)
}

// FeedFunc adapts a function to Feed.
type FeedFunc func(ctx context.Context) ([]Comment, error)

func (f FeedFunc) Comments(ctx context.Context) ([]Comment, error) {
	return f(ctx)
}

// FileFeed reads "<timestamp> <text>" lines from a file on every call.
type FileFeed struct {
	Path string
}

func (f FileFeed) Comments(ctx context.Context) ([]Comment, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open comment feed: %w", err)
	}
	defer file.Close()

	var comments []Comment
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stamp, text, _ := strings.Cut(line, " ")
		comments = append(comments, Comment{Timestamp: stamp, Text: strings.TrimSpace(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read comment feed: %w", err)
	}
	return comments, nil
}

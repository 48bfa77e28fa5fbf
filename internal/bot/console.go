package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Console is a Messenger writing replies to a terminal, for local runs.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

var _ Messenger = (*Console)(nil)

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Send(_ context.Context, _ string, text string, options []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, RenderOptions(text, options))
	return err
}

// RunConsole feeds every line of in to handler as a message from one user
// until in is exhausted or ctx is cancelled.
func RunConsole(ctx context.Context, in io.Reader, chatID, userID string, handler HandlerFunc) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := Message{ChatID: chatID, UserID: userID, UserName: userID, Text: sc.Text()}
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return sc.Err()
}

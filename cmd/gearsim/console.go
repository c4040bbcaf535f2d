package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gearcore/internal/game/command"
)

const prompt = "> "

// console reads commands until EOF or quit. Stop waits for the command in
// flight and discards any later input.
type console struct {
	sess *command.Session
	in   io.Reader
	out  io.Writer

	mu      sync.Mutex
	stopped bool
}

func newConsole(sess *command.Session, in io.Reader, out io.Writer) *console {
	return &console{sess: sess, in: in, out: out}
}

// Start runs the read loop.
func (c *console) Start(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	fmt.Fprint(c.out, prompt)
	for scanner.Scan() {
		done := c.handle(ctx, scanner.Text())
		if done {
			return nil
		}
		fmt.Fprint(c.out, prompt)
	}
	return scanner.Err()
}

func (c *console) handle(ctx context.Context, line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || ctx.Err() != nil {
		return true
	}
	text, quit := command.Handle(ctx, c.sess, line)
	if text != "" {
		fmt.Fprintln(c.out, text)
	}
	return quit
}

// Stop blocks until no command is running.
func (c *console) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}

// autosave persists the loadout when the process shuts down and then closes the pool.
type autosave struct {
	sess *command.Session
	// pool is closed once the save has been attempted.
	pool   interface{ Close() }
	logger *zap.Logger
}

// Start blocks until shutdown begins.
func (a *autosave) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Stop saves the character's loadout through the session store.
func (a *autosave) Stop(ctx context.Context) error {
	defer a.pool.Close()
	c := a.sess.Character
	if err := a.sess.Store.Save(ctx, c.Name, c.Level(), c.Inventory(), c.Equipment()); err != nil {
		return fmt.Errorf("autosaving loadout for %q: %w", c.Name, err)
	}
	a.logger.Info("loadout autosaved", zap.String("character", c.Name))
	return nil
}

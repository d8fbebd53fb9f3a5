/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"sync"

	"github.com/btnmasher/random"
)

// Handle is a stable, per-connection identity minted once by the Reactor
// and used as the key into every registry for the connection's lifetime.
// spec.md 3 describes it as "an opaque integer identifying one live TCP
// peer"; here it's an atomic counter rather than a reused OS file
// descriptor, since net.Conn does not expose one portably.
type Handle uint64

// Client holds the per-connection state spec.md 3 calls ClientInfo.
//
// rx_buffer is deliberately absent here: it lives inside the bufio.Reader
// that conn.go's readLoop owns exclusively (see DESIGN.md OQ-3), since
// nothing outside that goroutine ever needs to observe a partial line.
type Client struct {
	mu sync.RWMutex

	handle Handle
	nick   string
	user   string

	authenticated      bool
	passwordPromptSent bool

	// trace is a short diagnostic tag attached to every log line for this
	// connection, purely for correlating lines across a connection's
	// lifetime in the server log. It plays no part in any protocol decision.
	trace string

	conn *Conn
}

func newClient(handle Handle, conn *Conn) *Client {
	return &Client{
		handle: handle,
		conn:   conn,
		trace:  random.String(6),
	}
}

// Handle returns the client's registry key.
func (c *Client) Handle() Handle {
	return c.handle
}

// Trace returns the diagnostic correlation tag for this connection.
func (c *Client) Trace() string {
	return c.trace
}

// Nick returns the client's current nickname in a concurrency-safe manner.
func (c *Client) Nick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nick
}

// SetNick sets the client's nickname in a concurrency-safe manner.
func (c *Client) SetNick(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nick = nick
}

// User returns the client's username in a concurrency-safe manner.
func (c *Client) User() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SetUser sets the client's username in a concurrency-safe manner.
func (c *Client) SetUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// Authenticated reports whether the server password has been accepted.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// SetAuthenticated marks the client as having passed the password check.
func (c *Client) SetAuthenticated(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = ok
}

// PasswordPromptSent reports whether the handshake prompt has already gone
// out, distinguishing a connection's first read (the password) from every
// read after.
func (c *Client) PasswordPromptSent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.passwordPromptSent
}

// SetPasswordPromptSent records that the handshake prompt was written.
func (c *Client) SetPasswordPromptSent(sent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passwordPromptSent = sent
}

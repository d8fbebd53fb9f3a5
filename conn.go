/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"bufio"
	"net"

	"github.com/btnmasher/util"
)

// connBufPool is the global write-buffer pool, grounded directly on the
// teacher's server.go `bufpool = util.NewBufferPool(BufferPoolMax)` and
// message.go's `buffer := bufpool.New()` / `bufpool.Recycle(buffer)` call
// shape, repointed at plain reply lines instead of rendered Messages.
var connBufPool = util.NewBufferPool(BufferPoolMax)

// Conn wraps one accepted TCP socket: the line-framing reader and the
// synchronous writer. Grounded on the teacher's connection.go Conn, with
// the heartbeat/write-deadline/write-queue machinery dropped per spec.md
// 5's "there are no timeouts" (see DESIGN.md for the deletion entry) —
// every write here runs synchronously from the single Reactor goroutine,
// so there is nothing left to queue.
type Conn struct {
	handle     Handle
	sock       net.Conn
	remoteAddr string
}

func newConn(handle Handle, sock net.Conn) *Conn {
	return &Conn{
		handle:     handle,
		sock:       sock,
		remoteAddr: sock.RemoteAddr().String(),
	}
}

// RemoteAddr returns the peer's address string, for logging.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// WriteLine writes one reply line to the peer, appending the trailing
// "\n" the wire protocol expects (spec.md 6: "human-readable single-line
// responses terminated by \n").
func (c *Conn) WriteLine(line string) error {
	buf := connBufPool.New()
	defer connBufPool.Recycle(buf)
	buf.WriteString(line)
	buf.WriteByte('\n')
	_, err := c.sock.Write(buf.Bytes())
	return err
}

// WriteRaw writes s to the peer verbatim, with no trailing newline
// appended. Used only for the handshake prompt, which spec.md 6 specifies
// without one: `"Enter server password: "`.
func (c *Conn) WriteRaw(s string) error {
	_, err := c.sock.Write([]byte(s))
	return err
}

// Close closes the underlying socket. Safe to call more than once; every
// caller discards a repeat call's error, the same tolerance the teacher's
// cleanup() gives a connection that closes from two racing paths (peer
// EOF and a rejected handshake).
func (c *Conn) Close() error {
	return c.sock.Close()
}

// readLoop owns the connection's bufio.Reader for the connection's entire
// lifetime: this is where spec.md 3's rx_buffer actually lives (see
// DESIGN.md OQ-3) rather than as a field on Client. It posts one evLine
// per newline-delimited frame — a bare LF, with an optional preceding CR
// stripped by trimCRLF, per spec.md 6 — and a final evDisconnect once
// ReadString stops returning complete lines, then returns. A trailing
// unterminated fragment at EOF is discarded along with the rest of the
// connection's state, matching spec.md 5's "rx_buffer... released on
// disconnect".
func (c *Conn) readLoop(events chan<- event, handle Handle) {
	reader := bufio.NewReaderSize(c.sock, ReadBufferSize)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			events <- event{kind: evLine, handle: handle, line: trimCRLF(line)}
			continue
		}
		events <- event{kind: evDisconnect, handle: handle}
		return
	}
}

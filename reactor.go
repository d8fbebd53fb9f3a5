/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "strings"

// evKind distinguishes the three things that ever land on a Server's
// event channel. Accepts, lines, and disconnects share one type so that
// "the loop builds a readiness set and on wake handles whichever is
// ready" (spec.md 4.1) collapses to a single channel receive — see
// REDESIGN FLAG R1.
type evKind uint8

const (
	evAccept evKind = iota
	evLine
	evDisconnect
)

// event is an immutable value produced by the accept goroutine or one of
// the per-connection reader goroutines and consumed exclusively by the
// Server's own goroutine inside Serve's `for ev := range s.events` loop.
type event struct {
	kind   evKind
	handle Handle
	conn   *Conn
	line   string
}

// handle processes one event. Every registry mutation and reply write
// triggered by it completes before this call returns, which is what
// gives spec.md 5's "all side effects of that line complete before peer
// B's line is considered" guarantee for free from running on a single
// goroutine.
func (s *Server) handle(ev event) {
	switch ev.kind {
	case evAccept:
		s.handleAccept(ev)
	case evLine:
		s.handleLine(ev)
	case evDisconnect:
		s.handleDisconnect(ev)
	}
}

// handleAccept registers the new connection's Client, sends the password
// prompt, and marks that the next line read from it is the password
// response, per spec.md 6's handshake contract.
func (s *Server) handleAccept(ev event) {
	client := newClient(ev.handle, ev.conn)
	s.clients.Add(client)

	log := s.logger.WithField("trace", client.Trace()).WithField("remote", ev.conn.RemoteAddr())

	if err := ev.conn.WriteRaw("Enter server password: "); err != nil {
		log.WithError(err).Debug("write error during handshake prompt")
		s.disconnectClient(client)
		return
	}

	client.SetPasswordPromptSent(true)
	log.Info("accepted connection")
}

// handleLine routes one complete input line to either the handshake
// password check or the command dispatcher, depending on whether the
// owning client has already authenticated (spec.md 3: "authenticated ==
// true is a prerequisite for all registry mutations other than
// consumption of the initial password line").
func (s *Server) handleLine(ev event) {
	client, ok := s.clients.Get(ev.handle)
	if !ok {
		return
	}

	if !client.Authenticated() {
		s.handlePasswordLine(client, ev.line)
		return
	}

	cmd, err := Parse(ev.line)
	if err != nil {
		// A whitespace-only line is skipped silently and never elicits
		// "Unknown command." (spec.md 8, boundary behaviors).
		return
	}

	s.dispatcher.Dispatch(s, client, cmd)
}

// handlePasswordLine compares the first line from an unauthenticated
// client against the configured server password, trimming surrounding
// whitespace per spec.md 6.
func (s *Server) handlePasswordLine(client *Client, line string) {
	attempt := strings.TrimSpace(line)

	if attempt == s.password {
		client.SetAuthenticated(true)
		_ = client.conn.WriteLine("Password accepted. Welcome!")
		return
	}

	_ = client.conn.WriteLine("Incorrect password. Connection closed.")
	s.disconnectClient(client)
}

// handleDisconnect purges a client from every channel it belongs to and
// from the Client Registry, satisfying invariant 2: after any disconnect
// of handle h, h is absent from every channel's members, operators, and
// invitees.
func (s *Server) handleDisconnect(ev event) {
	client, ok := s.clients.Get(ev.handle)
	if !ok {
		return
	}
	s.disconnectClient(client)
}

// disconnectClient is the single cleanup path shared by a peer-initiated
// disconnect, a failed handshake, and a client-initiated QUIT: remove the
// handle from every channel, remove the Client from the registry, and
// close the socket. Safe to invoke more than once for the same handle;
// the second call finds nothing left to clean up.
func (s *Server) disconnectClient(client *Client) {
	s.channels.leaveAll(client.Handle())
	s.clients.Remove(client.Handle())
	_ = client.conn.Close()
	s.logger.WithField("trace", client.Trace()).Info("disconnected")
}

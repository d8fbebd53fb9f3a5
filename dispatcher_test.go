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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPeer pairs a Client/Conn wired to one end of an in-memory net.Pipe
// with a background reader draining the other end, since a real TCP
// socket isn't available in these tests but Conn.WriteLine still needs
// somewhere to block until it's read (net.Pipe is unbuffered).
type testPeer struct {
	client *Client
	lines  chan string
}

func newTestPeer(t *testing.T, h Handle, nick string) *testPeer {
	t.Helper()

	local, remote := net.Pipe()
	conn := newConn(h, local)
	client := newClient(h, conn)
	client.SetNick(nick)
	client.SetUser(nick)
	client.SetAuthenticated(true)

	p := &testPeer{client: client, lines: make(chan string, 32)}
	go func() {
		scanner := bufio.NewScanner(remote)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()
	return p
}

func (p *testPeer) expectLine(t *testing.T) string {
	t.Helper()
	select {
	case line := <-p.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reply")
		return ""
	}
}

func (p *testPeer) expectNoLine(t *testing.T) {
	t.Helper()
	select {
	case line := <-p.lines:
		t.Fatalf("unexpected reply: %q", line)
	case <-time.After(50 * time.Millisecond):
	}
}

func newDispatchTestServer() *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewServer(WithLogger(logger))
}

func dispatchLine(t *testing.T, server *Server, client *Client, line string) {
	t.Helper()
	cmd, err := Parse(line)
	require.NoError(t, err)
	server.dispatcher.Dispatch(server, client, cmd)
}

// TestScenarioCreateAndBroadcast covers spec.md 8's S2: a channel is
// created on first JOIN, a second joiner's PRIVMSG reaches the first but
// not itself.
func TestScenarioCreateAndBroadcast(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	assert.Equal(t, "Joined channel #room", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "JOIN #room")
	assert.Equal(t, "Joined channel #room", bob.expectLine(t))

	dispatchLine(t, server, alice.client, "PRIVMSG #room hello")
	assert.Equal(t, "alice: hello", bob.expectLine(t))
	alice.expectNoLine(t)
}

// TestScenarioInviteOnly covers spec.md 8's S3.
func TestScenarioInviteOnly(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +i")
	assert.Equal(t, "Channel mode for #room changed to +i", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "JOIN #room")
	assert.Equal(t, "Cannot join channel (+i)", bob.expectLine(t))

	dispatchLine(t, server, alice.client, "INVITE bob #room")
	assert.Equal(t, "User bob has been invited to channel #room", alice.expectLine(t))
	assert.Equal(t, "User bob has been invited to channel #room", bob.expectLine(t))

	dispatchLine(t, server, bob.client, "JOIN #room")
	assert.Equal(t, "Joined channel #room", bob.expectLine(t))
}

// TestScenarioKeyMode covers spec.md 8's S4.
func TestScenarioKeyMode(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +k")
	assert.Equal(t, "MODE +k requires a password parameter", alice.expectLine(t))

	dispatchLine(t, server, alice.client, "MODE #room +k hunter2")
	assert.Equal(t, "Channel mode for #room changed to +k", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "JOIN #room wrong")
	assert.Equal(t, "Cannot join channel (wrong password)", bob.expectLine(t))

	dispatchLine(t, server, bob.client, "JOIN #room hunter2")
	assert.Equal(t, "Joined channel #room", bob.expectLine(t))
}

// TestScenarioKickAndModeration covers spec.md 8's S5.
func TestScenarioKickAndModeration(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)
	dispatchLine(t, server, bob.client, "JOIN #room")
	bob.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +m")
	assert.Equal(t, "Channel mode for #room changed to +m", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "PRIVMSG #room hi")
	assert.Equal(t, "Channel is moderated. Only operators can send messages.", bob.expectLine(t))

	dispatchLine(t, server, alice.client, "KICK #room bob")
	assert.Equal(t, "User bob has been kicked from channel #room", alice.expectLine(t))
	assert.Equal(t, "User bob has been kicked from channel #room", bob.expectLine(t))

	ch, ok := server.channels.Get("#room")
	require.True(t, ok)
	assert.False(t, ch.IsMember(bob.client.Handle()))
}

// TestScenarioTopicRestriction covers spec.md 8's S6.
func TestScenarioTopicRestriction(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)
	dispatchLine(t, server, bob.client, "JOIN #room")
	bob.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +t")
	alice.expectLine(t)

	dispatchLine(t, server, bob.client, "TOPIC #room new topic")
	assert.Equal(t, "Topic change is restricted (+t).", bob.expectLine(t))

	dispatchLine(t, server, alice.client, "TOPIC #room new topic")
	assert.Equal(t, "Topic for #room is set to: new topic", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "TOPIC #room")
	assert.Equal(t, "Topic of #room: new topic", bob.expectLine(t))
}

func TestNickUniquenessRejected(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, bob.client, "NICK alice")
	assert.Equal(t, "Nickname is already in use: alice", bob.expectLine(t))
	assert.Equal(t, "bob", bob.client.Nick())
}

func TestVoiceAllowsModeratedSpeech(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	bob := newTestPeer(t, 2, "bob")
	server.clients.Add(alice.client)
	server.clients.Add(bob.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)
	dispatchLine(t, server, bob.client, "JOIN #room")
	bob.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +m")
	alice.expectLine(t)

	dispatchLine(t, server, alice.client, "MODE #room +v bob")
	assert.Equal(t, "User bob has been given voice in channel #room", alice.expectLine(t))

	dispatchLine(t, server, bob.client, "PRIVMSG #room hi")
	assert.Equal(t, "bob: hi", alice.expectLine(t))
}

func TestUnknownCommandReply(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	server.clients.Add(alice.client)

	dispatchLine(t, server, alice.client, "FROBNICATE now")
	assert.Equal(t, "Unknown command.", alice.expectLine(t))
}

func TestPartRemovesMemberAndGCsEmptyChannel(t *testing.T) {
	server := newDispatchTestServer()
	alice := newTestPeer(t, 1, "alice")
	server.clients.Add(alice.client)

	dispatchLine(t, server, alice.client, "JOIN #room")
	alice.expectLine(t)

	dispatchLine(t, server, alice.client, "PART #room")
	assert.Equal(t, "You have left channel #room", alice.expectLine(t))

	_, exists := server.channels.Get("#room")
	assert.False(t, exists)
}

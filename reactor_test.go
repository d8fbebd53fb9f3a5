/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	relayd "github.com/btnmasher/relayd"
)

// bddPeer is one TCP client dialed against a live test server, with a
// buffered reader over the socket from which recvExact and recvLine read
// replies on demand.
type bddPeer struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(addr string) *bddPeer {
	conn, err := net.Dial("tcp", addr)
	Expect(err).NotTo(HaveOccurred())
	return &bddPeer{conn: conn, reader: bufio.NewReader(conn)}
}

func (p *bddPeer) send(line string) {
	_, err := p.conn.Write([]byte(line + "\n"))
	Expect(err).NotTo(HaveOccurred())
}

func (p *bddPeer) recvExact(n int) string {
	buf := make([]byte, n)
	_, err := io.ReadFull(p.reader, buf)
	Expect(err).NotTo(HaveOccurred())
	return string(buf)
}

func (p *bddPeer) recvLine() string {
	line, err := p.reader.ReadString('\n')
	Expect(err).NotTo(HaveOccurred())
	return line[:len(line)-1]
}

var _ = Describe("Reactor", func() {
	var (
		cancel context.CancelFunc
		addr   string
	)

	BeforeEach(func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr = listener.Addr().String()

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())

		logger := logrus.New()
		logger.SetLevel(logrus.ErrorLevel)

		server := relayd.NewServer(
			relayd.WithPassword("secret"),
			relayd.WithLogger(logger),
			relayd.WithGracefulShutdown(ctx, time.Second),
		)

		go func() { _ = server.Serve(listener) }()
	})

	AfterEach(func() {
		cancel()
	})

	// Covers spec.md 8's S1: connect, receive the password prompt with no
	// trailing newline, authenticate, then NICK.
	It("authenticates and sets a nickname end to end", func() {
		peer := dial(addr)
		defer peer.conn.Close()

		Expect(peer.recvExact(len("Enter server password: "))).To(Equal("Enter server password: "))

		peer.send("secret")
		Expect(peer.recvLine()).To(Equal("Password accepted. Welcome!"))

		peer.send("NICK alice")
		Expect(peer.recvLine()).To(Equal("Nickname set to alice"))
	})

	It("closes the connection on a wrong password", func() {
		peer := dial(addr)
		defer peer.conn.Close()

		peer.recvExact(len("Enter server password: "))
		peer.send("wrong")
		Expect(peer.recvLine()).To(Equal("Incorrect password. Connection closed."))

		peer.conn.SetReadDeadline(time.Now().Add(time.Second))
		buf := make([]byte, 1)
		_, err := peer.conn.Read(buf)
		Expect(err).To(HaveOccurred())
	})

	It("relays a channel broadcast to a second real connection, excluding the sender", func() {
		alice := dial(addr)
		defer alice.conn.Close()
		alice.recvExact(len("Enter server password: "))
		alice.send("secret")
		alice.recvLine()
		alice.send("NICK alice")
		alice.recvLine()
		alice.send("JOIN #room")
		Expect(alice.recvLine()).To(Equal("Joined channel #room"))

		bob := dial(addr)
		defer bob.conn.Close()
		bob.recvExact(len("Enter server password: "))
		bob.send("secret")
		bob.recvLine()
		bob.send("NICK bob")
		bob.recvLine()
		bob.send("JOIN #room")
		Expect(bob.recvLine()).To(Equal("Joined channel #room"))

		alice.send("PRIVMSG #room hello")
		Expect(bob.recvLine()).To(Equal("alice: hello"))
	})

	It("tolerates a command split across two reads straddling the newline", func() {
		peer := dial(addr)
		defer peer.conn.Close()
		peer.recvExact(len("Enter server password: "))
		peer.send("secret")
		peer.recvLine()

		_, err := peer.conn.Write([]byte("NICK al"))
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(20 * time.Millisecond)
		_, err = peer.conn.Write([]byte("ice\n"))
		Expect(err).NotTo(HaveOccurred())

		Expect(peer.recvLine()).To(Equal("Nickname set to alice"))
	})
})

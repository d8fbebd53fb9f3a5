/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		wantVerb string
		wantArgs []string
	}{
		{"nick", "NICK alice", CmdNick, []string{"alice"}},
		{"lowercase verb uppercased", "nick alice", CmdNick, []string{"alice"}},
		{"join with key", "JOIN #room hunter2", CmdJoin, []string{"#room", "hunter2"}},
		{"join without key", "JOIN #room", CmdJoin, []string{"#room"}},
		{"privmsg keeps message verbatim", "PRIVMSG #room hello there friend", CmdPrivMsg, []string{"#room", "hello there friend"}},
		{"privmsg target only", "PRIVMSG #room", CmdPrivMsg, []string{"#room"}},
		{"topic with new topic", "TOPIC #room new topic here", CmdTopic, []string{"#room", "new topic here"}},
		{"topic read only", "TOPIC #room", CmdTopic, []string{"#room"}},
		{"quit with reason", "QUIT goodbye cruel world", CmdQuit, []string{"goodbye cruel world"}},
		{"quit without reason", "QUIT", CmdQuit, nil},
		{"mode toggle", "MODE #room +i", CmdMode, []string{"#room", "+i"}},
		{"mode with param", "MODE #room +k hunter2", CmdMode, []string{"#room", "+k", "hunter2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.wantVerb, cmd.Verb)
			assert.Equal(t, tc.wantArgs, cmd.Args)
			commandPool.Recycle(cmd)
		})
	}
}

func TestParseRejectsWhitespaceOnly(t *testing.T) {
	cases := []string{"", "   ", "\t", "\r"}
	for _, line := range cases {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrWhitespace)
	}
}

func TestParsePreservesTrailingCR(t *testing.T) {
	// Parse itself doesn't see the CR (trimCRLF runs in conn.go's reader),
	// but a stray CR following the verb's arguments should be preserved in
	// whatever verbatim payload carries it, not stripped mid-parse.
	cmd, err := Parse("PRIVMSG alice hi\r")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "hi\r"}, cmd.Args)
	commandPool.Recycle(cmd)
}

func TestTrimCRLF(t *testing.T) {
	assert.Equal(t, "NICK alice", trimCRLF("NICK alice\r\n"))
	assert.Equal(t, "NICK alice", trimCRLF("NICK alice\n"))
	assert.Equal(t, "NICK alice", trimCRLF("NICK alice"))
}

/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

// Error is a workaround to allow for immutable error strings
// which satisfy the error interface.
type Error string

func (err Error) Error() string {
	return string(err)
}

func (err Error) String() string {
	return string(err)
}

// Sentinel errors for the wire protocol and registry/channel state.
const (
	ErrNotEnoughData  Error = "did not receive enough data from the client"
	ErrWhitespace     Error = "all whitespace"
	ErrPrefixed       Error = "prefixed message from client"
	ErrUnknownCommand Error = "unknown command"

	ErrNickInUse     Error = "nickname is already in use"
	ErrNoSuchNick    Error = "no such user or channel"
	ErrNoSuchChannel Error = "no such channel"

	ErrNotOperator  Error = "not an operator of channel"
	ErrNotInChannel Error = "not in channel"
	ErrInviteOnly   Error = "invite-only"
	ErrBadChanKey   Error = "wrong password"
	ErrChanFull     Error = "limit reached"
	ErrModerated    Error = "channel is moderated"
	ErrTopicLocked  Error = "topic change is restricted"

	ErrBadModeParam Error = "bad mode parameter"
	ErrUnknownMode  Error = "unknown mode"

	ErrBadPassword   Error = "incorrect server password"
	ErrServerClosed  Error = "relayd: server closed"
	ErrMissingParams Error = "missing parameters"
)

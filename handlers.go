/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "strconv"

// handleNick implements spec.md 4.2's NICK. Uniqueness is enforced per
// DESIGN.md OQ-2: a name already held by another authenticated client is
// rejected and the caller's own nickname is left unchanged.
func handleNick(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdNick)
		ctx.Handled()
		return
	}

	nick := ctx.Cmd.Arg(0)
	if ctx.server.clients.NickTaken(nick, ctx.Client.Handle()) {
		ctx.Client.conn.replyNicknameInUse(nick)
		ctx.Handled()
		return
	}

	ctx.Client.SetNick(nick)
	ctx.Client.conn.replyNicknameSet(nick)
	ctx.Handled()
}

// handleUser implements spec.md 4.2's USER.
func handleUser(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdUser)
		ctx.Handled()
		return
	}

	user := ctx.Cmd.Arg(0)
	ctx.Client.SetUser(user)
	ctx.Client.conn.replyUsernameSet(user)
	ctx.Handled()
}

// handleJoin implements spec.md 4.3's JOIN policy: a non-existent channel
// is created unconditionally with the joiner seated as its first operator;
// an existing channel is checked, in order, against invite-only, key, and
// member-limit modes.
func handleJoin(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdJoin)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	key := ctx.Cmd.Arg(1)
	handle := ctx.Client.Handle()

	ch, created := ctx.server.channels.GetOrCreate(name)
	if created {
		ch.addFounder(handle)
		ctx.server.logger.WithField("channel", name).Debug("Channel created")
		ctx.Client.conn.replyJoined(name)
		ctx.Handled()
		return
	}

	switch {
	case ch.ModeIsSet(ModeInviteOnly) && !ch.IsInvited(handle):
		ctx.Client.conn.replyCannotJoinInviteOnly()
	case ch.ModeIsSet(ModeKeyed) && key != ch.Key():
		ctx.Client.conn.replyCannotJoinBadKey()
	case ch.ModeIsSet(ModeLimited) && ch.MemberCount() >= ch.UserLimit():
		ctx.Client.conn.replyCannotJoinFull()
	default:
		ch.Join(handle)
		ctx.Client.conn.replyJoined(name)
	}
	ctx.Handled()
}

// handlePrivmsg implements spec.md 4.3's PRIVMSG policy: a target that
// resolves to a registered channel is treated as a channel send (member
// and moderation checks apply, with the Channel Voice Mode widening who
// may speak in a moderated channel); anything else is resolved as a
// nickname by linear scan.
func handlePrivmsg(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 2) {
		ctx.Client.conn.replyMissingParams(CmdPrivMsg)
		ctx.Handled()
		return
	}

	target := ctx.Cmd.Arg(0)
	message := ctx.Cmd.Arg(1)
	senderNick := ctx.Client.Nick()
	handle := ctx.Client.Handle()

	if ch, ok := ctx.server.channels.Get(target); ok {
		if !ch.IsMember(handle) {
			ctx.Client.conn.replyNotInChannel(target)
			ctx.Handled()
			return
		}
		if ch.ModeIsSet(ModeModerated) {
			if role := ch.Role(handle); role != RoleOperator && role != RoleVoice {
				ctx.Client.conn.replyModerated()
				ctx.Handled()
				return
			}
		}
		for _, member := range ch.Members() {
			if member == handle {
				continue
			}
			if recipient, ok := ctx.server.clients.Get(member); ok {
				recipient.conn.replyPrivmsg(senderNick, message)
			}
		}
		ctx.Handled()
		return
	}

	recipient, ok := ctx.server.clients.ByNick(target)
	if !ok {
		ctx.Client.conn.replyNoSuchUserOrChannel(target)
		ctx.Handled()
		return
	}
	recipient.conn.replyPrivmsg(senderNick, message)
	ctx.Handled()
}

// handleKick implements spec.md 4.3's KICK: the invoker must already be an
// operator of the channel; the target must exist and be a member.
func handleKick(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 2) {
		ctx.Client.conn.replyMissingParams(CmdKick)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	nick := ctx.Cmd.Arg(1)
	handle := ctx.Client.Handle()

	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}
	if !ch.IsOperator(handle) {
		ctx.Client.conn.replyNotOperator(name)
		ctx.Handled()
		return
	}

	target, ok := ctx.server.clients.ByNick(nick)
	if !ok || !ch.IsMember(target.Handle()) {
		ctx.Client.conn.replyNoSuchUserOrChannel(nick)
		ctx.Handled()
		return
	}

	ch.Remove(target.Handle())
	if ch.MemberCount() == 0 {
		ctx.server.channels.Delete(name)
	}

	ctx.Client.conn.replyKicked(nick, name)
	if target.Handle() != handle {
		target.conn.replyKicked(nick, name)
	}
	ctx.Handled()
}

// handleMode implements spec.md 4.3's MODE table, plus the supplemental
// +v/-v voice grant from SPEC_FULL.md's Channel Voice Mode. The operator
// check runs before any parsing of ±X, per spec.md 4.3: "Operator check
// for MODE: the invoker must be an operator... otherwise reject before
// any parsing."
func handleMode(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 2) {
		ctx.Client.conn.replyMissingParams(CmdMode)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	flag := ctx.Cmd.Arg(1)
	param := ctx.Cmd.Arg(2)
	handle := ctx.Client.Handle()

	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}
	if !ch.IsOperator(handle) {
		ctx.Client.conn.replyNotOperator(name)
		ctx.Handled()
		return
	}

	if len(flag) != 2 || (flag[0] != '+' && flag[0] != '-') {
		ctx.Client.conn.replyUnknownMode(flag)
		ctx.Handled()
		return
	}
	grant := flag[0] == '+'
	letter := flag[1]

	switch letter {
	case 'o', 'v':
		handleMemberModeChange(ctx, ch, name, letter, grant, param)
	case 'k':
		handleKeyModeChange(ctx, ch, name, grant, param)
	case 'l':
		handleLimitModeChange(ctx, ch, name, grant, param)
	default:
		bit, known := modeLetter[letter]
		if !known {
			ctx.Client.conn.replyUnknownMode(flag)
			ctx.Handled()
			return
		}
		if grant {
			ch.SetMode(bit)
		} else {
			ch.ClearMode(bit)
		}
		ctx.Client.conn.replyModeChanged(name, ch.ModeString())
	}
	ctx.Handled()
}

// handleMemberModeChange covers +o/-o and +v/-v: the target must already
// exist as a client and already be a member of the channel.
func handleMemberModeChange(ctx *CommandContext, ch *Channel, name string, letter byte, grant bool, nick string) {
	if nick == "" {
		ctx.Client.conn.replyMissingParams(CmdMode)
		return
	}

	target, ok := ctx.server.clients.ByNick(nick)
	if !ok || !ch.IsMember(target.Handle()) {
		ctx.Client.conn.replyNotChannelMember(nick, name)
		return
	}

	role := RoleVoice
	if letter == 'o' {
		role = RoleOperator
	}

	if grant {
		ch.Grant(target.Handle(), role)
	} else {
		ch.Revoke(target.Handle(), role)
	}

	switch {
	case letter == 'o' && grant:
		ctx.Client.conn.replyOperatorGranted(nick, name)
	case letter == 'o':
		ctx.Client.conn.replyOperatorRevoked(nick, name)
	case grant:
		ctx.Client.conn.replyVoiceGranted(nick, name)
	default:
		ctx.Client.conn.replyVoiceRevoked(nick, name)
	}
}

// handleKeyModeChange covers +k <key>/-k: a missing key on +k is an error
// and the mode is left unset; -k always clears both the flag and the
// stored key.
func handleKeyModeChange(ctx *CommandContext, ch *Channel, name string, grant bool, key string) {
	if grant {
		if key == "" {
			ctx.Client.conn.replyModeKeyRequired()
			return
		}
		ch.SetKey(key)
		ch.SetMode(ModeKeyed)
	} else {
		ch.ClearMode(ModeKeyed)
		ch.SetKey("")
	}
	ctx.Client.conn.replyModeChanged(name, ch.ModeString())
}

// handleLimitModeChange covers +l <positive-integer>/-l: a missing or
// non-positive parameter on +l is an error and the mode is left unset;
// -l always clears both the flag and the stored limit.
func handleLimitModeChange(ctx *CommandContext, ch *Channel, name string, grant bool, param string) {
	if grant {
		limit, err := strconv.Atoi(param)
		if err != nil || limit <= 0 {
			ctx.Client.conn.replyModeLimitRequired()
			return
		}
		ch.SetUserLimit(limit)
		ch.SetMode(ModeLimited)
	} else {
		ch.ClearMode(ModeLimited)
		ch.SetUserLimit(0)
	}
	ctx.Client.conn.replyModeChanged(name, ch.ModeString())
}

// handleInvite implements spec.md 4.3's INVITE: the invoker must be an
// operator; both invoker and target receive the confirmation line.
func handleInvite(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 2) {
		ctx.Client.conn.replyMissingParams(CmdInvite)
		ctx.Handled()
		return
	}

	nick := ctx.Cmd.Arg(0)
	name := ctx.Cmd.Arg(1)
	handle := ctx.Client.Handle()

	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}
	if !ch.IsOperator(handle) {
		ctx.Client.conn.replyNotOperator(name)
		ctx.Handled()
		return
	}

	target, ok := ctx.server.clients.ByNick(nick)
	if !ok {
		ctx.Client.conn.replyNoSuchUserOrChannel(nick)
		ctx.Handled()
		return
	}

	ch.Invite(target.Handle())
	ctx.Client.conn.replyInvited(nick, name)
	if target.Handle() != handle {
		target.conn.replyInvited(nick, name)
	}
	ctx.Handled()
}

// handleTopic implements spec.md 4.3's TOPIC: reading is unrestricted,
// writing is gated by the +t mode unless the invoker is an operator.
func handleTopic(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdTopic)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	handle := ctx.Client.Handle()

	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}

	if ctx.Cmd.NArgs() < 2 {
		ctx.Client.conn.replyTopicOf(name, ch.Topic())
		ctx.Handled()
		return
	}

	if ch.ModeIsSet(ModeTopicLocked) && !ch.IsOperator(handle) {
		ctx.Client.conn.replyTopicRestricted()
		ctx.Handled()
		return
	}

	newTopic := ctx.Cmd.Arg(1)
	ch.SetTopic(newTopic)
	ctx.Client.conn.replyTopicSet(name, newTopic)
	ctx.Handled()
}

// handlePart implements the supplemental PART verb (SPEC_FULL.md 4.2):
// leaves a channel the caller is a member of, garbage-collecting it if
// that empties it (DESIGN.md OQ-1), and confirms to the caller only.
func handlePart(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdPart)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	handle := ctx.Client.Handle()

	ch, ok := ctx.server.channels.Get(name)
	if !ok || !ch.IsMember(handle) {
		ctx.Client.conn.replyNotInChannel(name)
		ctx.Handled()
		return
	}

	ctx.server.channels.leave(name, handle)
	ctx.Client.conn.replyParted(name)
	ctx.Handled()
}

// handleNames implements the supplemental NAMES verb: the member list,
// role-decorated and chunked to MaxMsgLength.
func handleNames(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdNames)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}

	members := ch.Members()
	decorated := make([]string, 0, len(members))
	for _, h := range members {
		client, ok := ctx.server.clients.Get(h)
		if !ok {
			continue
		}
		decorated = append(decorated, ch.Role(h).String()+client.Nick())
	}

	ctx.Client.conn.replyNames(name, decorated)
	ctx.Handled()
}

// handleWho implements the supplemental WHO verb: one line per member,
// nickname and username.
func handleWho(ctx *CommandContext) {
	if !enoughArgs(ctx.Cmd, 1) {
		ctx.Client.conn.replyMissingParams(CmdWho)
		ctx.Handled()
		return
	}

	name := ctx.Cmd.Arg(0)
	ch, ok := ctx.server.channels.Get(name)
	if !ok {
		ctx.Client.conn.replyNoSuchChannel(name)
		ctx.Handled()
		return
	}

	for _, h := range ch.Members() {
		client, ok := ctx.server.clients.Get(h)
		if !ok {
			continue
		}
		ctx.Client.conn.replyWhoLine(client.Nick(), client.User())
	}
	ctx.Handled()
}

// handleList implements the supplemental LIST verb: one line per existing
// channel, its name, member count, and topic.
func handleList(ctx *CommandContext) {
	for _, ch := range ctx.server.channels.All() {
		ctx.Client.conn.replyListLine(ch.Name(), ch.MemberCount(), ch.Topic())
	}
	ctx.Handled()
}

// handleQuit implements the supplemental QUIT verb: an explicit reason is
// logged for diagnostics only (SPEC_FULL.md 4.2: "a reason that is not
// otherwise observable") and the connection is torn down through the same
// path a peer-initiated disconnect uses.
func handleQuit(ctx *CommandContext) {
	log := ctx.server.logger.WithField("trace", ctx.Client.Trace())
	if reason := ctx.Cmd.Arg(0); reason != "" {
		log = log.WithField("reason", reason)
	}
	log.Info("client quit")

	ctx.server.disconnectClient(ctx.Client)
	ctx.Handled()
}

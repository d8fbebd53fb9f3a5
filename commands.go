/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

// Command verb constants. The first eight are spec's core command surface;
// the remainder are read-only supplements carried over from original_source/
// (NAMES, LIST, WHO, PART, QUIT) that the distillation dropped.
const (
	CmdNick    string = "NICK"
	CmdUser    string = "USER"
	CmdJoin    string = "JOIN"
	CmdPrivMsg string = "PRIVMSG"
	CmdKick    string = "KICK"
	CmdMode    string = "MODE"
	CmdInvite  string = "INVITE"
	CmdTopic   string = "TOPIC"

	CmdPart  string = "PART"
	CmdNames string = "NAMES"
	CmdWho   string = "WHO"
	CmdList  string = "LIST"
	CmdQuit  string = "QUIT"
)

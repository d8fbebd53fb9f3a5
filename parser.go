/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "strings"

// Parse takes one already-newline-stripped input line and turns it into a
// Command. The verb is the first whitespace-delimited token, uppercased;
// everything else is parsed per-verb.
//
// For PRIVMSG and TOPIC the remainder after the first argument is kept
// verbatim (only one leading space is consumed) rather than re-split on
// whitespace, since spec.md 4.2 explicitly calls that payload free-form
// and does not support the IRC `:trailing` marker. QUIT keeps its whole
// remainder as a single reason argument. Every other verb's arguments are
// ordinary whitespace-delimited tokens, rebuilt on the exact
// nextToken algorithm read out of original_source/src/server.cpp's
// istringstream handling.
func Parse(line string) (*Command, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrWhitespace
	}

	verb, rest := nextToken(line)
	verb = strings.ToUpper(verb)
	if verb == "" {
		return nil, ErrWhitespace
	}

	cmd := commandPool.New()
	cmd.Verb = verb

	switch verb {
	case CmdPrivMsg, CmdTopic:
		cmd.Args = parseFreeform(rest)
	case CmdQuit:
		// A QUIT reason is free text, same as a PRIVMSG payload, but it
		// has no leading target token to split off first.
		if rest != "" {
			cmd.Args = []string{rest}
		}
	default:
		cmd.Args = strings.Fields(rest)
	}

	return cmd, nil
}

// nextToken splits s at its first space or tab, returning the token
// before it and everything after (including any further leading
// whitespace, left for the caller to decide how to treat).
func nextToken(s string) (token, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// parseFreeform splits "<target> <message...>" into at most two arguments:
// the target token, and the message exactly as written (spaces and all),
// with only the single separating space consumed. A target with no
// trailing message yields a single-element slice.
func parseFreeform(rest string) []string {
	if rest == "" {
		return nil
	}
	target, message := nextToken(rest)
	if message == "" && !strings.ContainsAny(rest, " \t") {
		return []string{target}
	}
	return []string{target, message}
}

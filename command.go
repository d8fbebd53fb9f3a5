/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "github.com/btnmasher/relayd/shared/itempool"

// Command is one parsed input line: a verb and its whitespace-delimited
// arguments. Unlike the teacher's Message, there is no RFC prefix,
// numeric code, or CRLF renderer to carry — this protocol's wire format
// has none of those (spec.md 4.2: "Parsing does not support the IRC
// :trailing marker").
type Command struct {
	Verb string
	Args []string
}

// Scrub resets a Command for reuse, satisfying shared/itempool's
// ScrubbableItem interface.
func (c *Command) Scrub() {
	c.Verb = ""
	c.Args = nil
}

// Arg returns the i'th argument, or "" if there aren't that many.
func (c *Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// NArgs returns the number of parsed arguments.
func (c *Command) NArgs() int {
	return len(c.Args)
}

var commandPool = itempool.New[*Command](CommandPoolMax, func() *Command {
	return &Command{}
})

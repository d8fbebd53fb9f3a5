/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"strings"

	"github.com/btnmasher/relayd/shared/concurrentmap"
)

// ClientRegistry maps a Handle to its Client for the connection's
// lifetime, plus a linear nickname lookup per spec.md 3: "Nickname lookup
// is linear-scan over ClientInfo; no separate reverse index is required."
//
// Generalizes the teacher's hand-rolled ConnMap/UserMap wrappers onto its
// own unused generic shared/concurrentmap.ConcurrentMap[K,V].
type ClientRegistry struct {
	clients concurrentmap.ConcurrentMap[Handle, *Client]
}

// NewClientRegistry returns an empty ClientRegistry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: concurrentmap.New[Handle, *Client]()}
}

// Add registers a new client under its handle.
func (r *ClientRegistry) Add(c *Client) {
	r.clients.Set(c.Handle(), c)
}

// Get looks up a client by handle.
func (r *ClientRegistry) Get(h Handle) (*Client, bool) {
	return r.clients.Get(h)
}

// Remove deletes a client from the registry.
func (r *ClientRegistry) Remove(h Handle) {
	r.clients.Delete(h)
}

// ByNick resolves a nickname to a client by exact-match linear scan, per
// spec.md 4.5's "no normalization is performed".
func (r *ClientRegistry) ByNick(nick string) (*Client, bool) {
	var found *Client
	r.clients.ForEach(func(_ Handle, c *Client) error {
		if found == nil && c.Nick() == nick {
			found = c
		}
		return nil
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

// NickTaken reports whether an authenticated client other than exclude
// already holds the given nickname, used by NICK's uniqueness check
// (DESIGN.md OQ-2: enforced).
func (r *ClientRegistry) NickTaken(nick string, exclude Handle) bool {
	taken := false
	r.clients.ForEach(func(h Handle, c *Client) error {
		if h != exclude && c.Authenticated() && c.Nick() == nick {
			taken = true
		}
		return nil
	})
	return taken
}

// ChannelRegistry maps a channel name to its Channel, case-sensitively and
// without normalization per spec.md 4.5.
type ChannelRegistry struct {
	channels concurrentmap.ConcurrentMap[string, *Channel]
}

// NewChannelRegistry returns an empty ChannelRegistry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: concurrentmap.New[string, *Channel]()}
}

// Get looks up a channel by its exact name.
func (r *ChannelRegistry) Get(name string) (*Channel, bool) {
	return r.channels.Get(name)
}

// GetOrCreate returns the named channel, creating and registering a new
// one if it does not already exist. Reports whether it was created.
func (r *ChannelRegistry) GetOrCreate(name string) (*Channel, bool) {
	if ch, ok := r.channels.Get(name); ok {
		return ch, false
	}
	ch := NewChannel(name)
	r.channels.Set(name, ch)
	return ch, true
}

// Delete removes a channel from the registry (used for empty-channel GC;
// DESIGN.md OQ-1: resolved as remove-on-empty).
func (r *ChannelRegistry) Delete(name string) {
	r.channels.Delete(name)
}

// All returns a snapshot of every registered channel, used by LIST.
func (r *ChannelRegistry) All() []*Channel {
	return r.channels.Values()
}

// leaveAll removes h from every channel's members/operators/voiced/
// invitees, and deletes any channel left empty as a result. Called on
// disconnect (invariant 2); PART uses leave and KICK uses Channel.Remove.
func (r *ChannelRegistry) leaveAll(h Handle) {
	for _, ch := range r.channels.Values() {
		if !ch.IsMember(h) {
			continue
		}
		ch.Remove(h)
		if ch.MemberCount() == 0 {
			r.channels.Delete(ch.Name())
		}
	}
}

// leave removes h from the named channel and garbage-collects the channel
// if that empties it. Reports whether the channel existed.
func (r *ChannelRegistry) leave(name string, h Handle) bool {
	ch, ok := r.channels.Get(name)
	if !ok {
		return false
	}
	ch.Remove(h)
	if ch.MemberCount() == 0 {
		r.channels.Delete(name)
	}
	return true
}

// trimCRLF strips a trailing bare LF and an optional preceding CR, per
// spec.md 6's "lines terminated by \n (bare LF; CR before LF is tolerated
// and stripped)".
func trimCRLF(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line
}

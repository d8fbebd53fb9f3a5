/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "sync"

// Channel represents one named channel: its topic, its insertion-ordered
// member list, its operator/voice/invitee sets, and its mode flags.
//
// Grounded on the teacher's channel.go Send/Join/Part/GetNicks shape, with
// member storage redesigned from a nick-keyed *UserMap to an ordered
// []Handle plus handle-keyed sets, per spec.md 9's explicit "channels
// refer to clients by integer handle, not by owning pointer" note.
type Channel struct {
	mu sync.RWMutex

	name  string
	topic string

	members []Handle
	index   map[Handle]int // handle -> position in members, for O(1) removal

	operators map[Handle]struct{}
	voiced    map[Handle]struct{}
	invitees  map[Handle]struct{}

	modes     uint8
	key       string
	userLimit int
}

// NewChannel initializes an empty Channel with the given name. The caller
// is responsible for adding the creator as its first member and operator,
// per spec.md 3's "the joiner becomes its first operator" rule.
func NewChannel(name string) *Channel {
	return &Channel{
		name:      name,
		index:     make(map[Handle]int),
		operators: make(map[Handle]struct{}),
		voiced:    make(map[Handle]struct{}),
		invitees:  make(map[Handle]struct{}),
	}
}

// Name returns the channel's immutable name.
func (c *Channel) Name() string {
	return c.name
}

// Topic returns the channel's topic in a concurrency-safe manner.
func (c *Channel) Topic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topic
}

// SetTopic sets the channel's topic in a concurrency-safe manner.
func (c *Channel) SetTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
}

// Modes returns the current mode bitmask.
func (c *Channel) Modes() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modes
}

// ModeIsSet reports whether the given mode flag is currently set.
func (c *Channel) ModeIsSet(flag uint8) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return modeIsSet(c.modes, flag)
}

// SetMode sets the given mode flag.
func (c *Channel) SetMode(flag uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modes = addMode(c.modes, flag)
}

// ClearMode clears the given mode flag.
func (c *Channel) ClearMode(flag uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modes = delMode(c.modes, flag)
}

// ModeString renders the currently-set mode letters, e.g. "+itk".
func (c *Channel) ModeString() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return renderModes(c.modes)
}

// Key returns the channel's join key (meaningful only when ModeKeyed is
// set).
func (c *Channel) Key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// SetKey sets the channel's join key.
func (c *Channel) SetKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
}

// UserLimit returns the channel's configured member-count limit (0 means
// unlimited, meaningful only when ModeLimited is set).
func (c *Channel) UserLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userLimit
}

// SetUserLimit sets the channel's member-count limit.
func (c *Channel) SetUserLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userLimit = limit
}

// IsMember reports whether the handle currently occupies a seat in the
// channel.
func (c *Channel) IsMember(h Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[h]
	return ok
}

// IsOperator reports whether the handle is in the channel's operator set.
func (c *Channel) IsOperator(h Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.operators[h]
	return ok
}

// IsVoiced reports whether the handle is in the channel's voice set.
func (c *Channel) IsVoiced(h Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.voiced[h]
	return ok
}

// IsInvited reports whether the handle has an outstanding invite.
func (c *Channel) IsInvited(h Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.invitees[h]
	return ok
}

// MemberCount returns the number of current members.
func (c *Channel) MemberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Role returns the highest rank the handle currently holds in this
// channel, RoleMember if it is a plain member or not a member at all.
func (c *Channel) Role(h Handle) Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.operators[h]; ok {
		return RoleOperator
	}
	if _, ok := c.voiced[h]; ok {
		return RoleVoice
	}
	return RoleMember
}

// addFounder seats the channel's creator as its first member and operator.
// Used only when a JOIN creates a new channel, per spec.md 3: "no mode
// checks apply" to the creator.
func (c *Channel) addFounder(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendMember(h)
	c.operators[h] = struct{}{}
}

func (c *Channel) appendMember(h Handle) {
	if _, ok := c.index[h]; ok {
		return
	}
	c.index[h] = len(c.members)
	c.members = append(c.members, h)
}

// Join admits the handle unconditionally and consumes any outstanding
// invite. Mode policy checks (invite-only, key, limit) are the caller's
// responsibility (handlers.go's handleJoin), per spec.md 4.3's ordering.
func (c *Channel) Join(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendMember(h)
	delete(c.invitees, h)
}

// Invite adds the handle to the outstanding-invite set.
func (c *Channel) Invite(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invitees[h] = struct{}{}
}

// Grant promotes the handle to the given role. Only RoleOperator and
// RoleVoice are meaningful grants; granting RoleMember is a no-op since
// every member already holds it implicitly.
func (c *Channel) Grant(h Handle, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch role {
	case RoleOperator:
		c.operators[h] = struct{}{}
	case RoleVoice:
		c.voiced[h] = struct{}{}
	}
}

// Revoke removes the handle from the given role's set.
func (c *Channel) Revoke(h Handle, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch role {
	case RoleOperator:
		delete(c.operators, h)
	case RoleVoice:
		delete(c.voiced, h)
	}
}

// Remove removes the handle from members, operators, voiced, and invitees.
// Per spec.md 9's "operator set drift" note, removal from members always
// also removes from operators (and, by the same reasoning, from voice) to
// restore the "operator is a subset of members" invariant.
func (c *Channel) Remove(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeMember(h)
	delete(c.operators, h)
	delete(c.voiced, h)
	delete(c.invitees, h)
}

// removeMember deletes h from members while preserving the relative order
// of everyone else, since invariant 4 requires delivery "in the order they
// appear in c.members" and a swap-remove would scramble that order.
func (c *Channel) removeMember(h Handle) {
	pos, ok := c.index[h]
	if !ok {
		return
	}
	c.members = append(c.members[:pos], c.members[pos+1:]...)
	delete(c.index, h)
	for i := pos; i < len(c.members); i++ {
		c.index[c.members[i]] = i
	}
}

// Members returns a snapshot of the current member list in insertion
// order, used for PRIVMSG fan-out (invariant 4: delivered to exactly
// c.members \ {sender} in that order) and for NAMES/WHO.
func (c *Channel) Members() []Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Handle, len(c.members))
	copy(out, c.members)
	return out
}

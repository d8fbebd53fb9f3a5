/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

// Role is a member's per-channel rank, narrower than the teacher's
// UPerm server-wide permission ladder: a channel only distinguishes
// plain members, voiced members, and operators.
type Role uint8

const (
	RoleMember Role = iota
	RoleVoice
	RoleOperator
)

// String renders the nick-list decoration prefix for a role, matching the
// teacher's GetNicks ladder of ~/@/%/+ (halfop's % is unused here; the
// teacher's ~ owner glyph has no analogue since this protocol has no
// single channel "owner", only an operator set).
func (r Role) String() string {
	switch r {
	case RoleOperator:
		return "@"
	case RoleVoice:
		return "+"
	default:
		return ""
	}
}

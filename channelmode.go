/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

// Channel mode bitmasks, one bit per flag in spec.md 3's {i,t,k,l,m,n} set.
// Modeled on usermode.go's `const (... = 1 << iota)` idiom, repointed from
// server-wide user permission bits to per-channel flags.
const (
	ModeInviteOnly uint8 = 1 << iota // i
	ModeTopicLocked                  // t
	ModeKeyed                        // k
	ModeLimited                      // l
	ModeModerated                    // m
	ModeNoExternal                   // n
)

// modeChar maps each bit to its wire-protocol letter, and modeLetter is its
// inverse, used by MODE parsing and by the "Channel mode for <name> changed
// to <mode>" diagnostic.
var modeChar = map[uint8]byte{
	ModeInviteOnly:  'i',
	ModeTopicLocked: 't',
	ModeKeyed:       'k',
	ModeLimited:     'l',
	ModeModerated:   'm',
	ModeNoExternal:  'n',
}

var modeLetter = map[byte]uint8{
	'i': ModeInviteOnly,
	't': ModeTopicLocked,
	'k': ModeKeyed,
	'l': ModeLimited,
	'm': ModeModerated,
	'n': ModeNoExternal,
}

// addMode sets the given mode bit.
func addMode(modes, flag uint8) uint8 {
	return modes | flag
}

// delMode clears the given mode bit.
func delMode(modes, flag uint8) uint8 {
	return modes &^ flag
}

// modeIsSet reports whether the given mode bit is set.
func modeIsSet(modes, flag uint8) bool {
	return modes&flag == flag
}

// renderModes returns the currently-set mode letters in a stable order,
// used by the "Channel mode for <name> changed to <mode>" reply.
func renderModes(modes uint8) string {
	order := []uint8{ModeInviteOnly, ModeTopicLocked, ModeKeyed, ModeLimited, ModeModerated, ModeNoExternal}
	out := make([]byte, 0, len(order)+1)
	out = append(out, '+')
	for _, flag := range order {
		if modeIsSet(modes, flag) {
			out = append(out, modeChar[flag])
		}
	}
	if len(out) == 1 {
		return ""
	}
	return string(out)
}

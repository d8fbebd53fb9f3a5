/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import "time"

// Limiter constants.
const (
	// MaxMsgLength caps the length of a single rendered reply line, mirroring
	// the teacher's RFC frame-length budget even though this protocol has no
	// RFC trailing marker to worry about.
	MaxMsgLength int = 512

	// ReadBufferSize is the size of the staging buffer each connection's
	// reader uses per spec.md 4.1's "fixed staging buffer (>= 1024 bytes)".
	ReadBufferSize int = 4096

	// MaxChanLength, MaxNickLength, MaxUserLength are soft limits; spec.md
	// explicitly declines to require structural validation on channel names,
	// so nothing in this module checks input against them.
	MaxChanLength int = 64
	MaxNickLength int = 32
	MaxUserLength int = 32

	// CommandPoolMax sizes the object pool backing the per-line Command
	// value.
	CommandPoolMax = 1000

	// BufferPoolMax sizes the write-buffer pool in conn.go.
	BufferPoolMax = 1000

	// EventQueueLength is the buffer depth of the Reactor's single event
	// channel; producers (accept goroutine, per-connection readers) block
	// once it's full rather than drop events.
	EventQueueLength = 64

	// AcceptRetryDelay and AcceptRetryMax bound the backoff used on
	// transient accept errors, following the teacher's Serve loop.
	AcceptRetryDelay = 5 * time.Millisecond
	AcceptRetryMax   = 1 * time.Second

	// GracefulShutdownTimeout is the default grace period given to live
	// connections to close after a shutdown is requested.
	GracefulShutdownTimeout = 30 * time.Second
)

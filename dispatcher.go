/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package relayd

import (
	"fmt"
	"path"
	"reflect"
	"runtime"

	"github.com/sirupsen/logrus"
)

// CommandContext carries one dispatch through its handler chain, mirroring
// the teacher's MessageContext but against a Client/Command pair instead
// of a Conn/Message pair.
type CommandContext struct {
	Client *Client
	Cmd    *Command

	server  *Server
	handler string
	handled bool
	abort   bool
	err     error
}

// Handled signals the dispatcher to stop walking the handler chain.
func (ctx *CommandContext) Handled() {
	ctx.handled = true
}

// AbortWithError signals the dispatcher to stop walking the chain and log
// the given error against this command.
func (ctx *CommandContext) AbortWithError(err error) {
	ctx.abort = true
	ctx.err = err
}

// CommandHandler processes one command within a dispatch chain.
type CommandHandler func(*CommandContext)

// HandlersChain is an ordered list of CommandHandlers run for one verb.
type HandlersChain []CommandHandler

// Dispatcher maps verbs to handler chains and routes parsed Commands to
// them. Grounded on router.go's Router/HandlerMap/HandlersChain, narrowed
// to this protocol's verb set (no RouterGroup/middleware composition is
// needed since every verb here has exactly one handler).
type Dispatcher struct {
	logger      *logrus.Entry
	handlersMap map[string]HandlersChain
}

// NewDispatcher returns a Dispatcher with every core and supplemental verb
// registered to its handler.
func NewDispatcher(logger *logrus.Entry) *Dispatcher {
	d := &Dispatcher{
		logger:      logger.WithField("sub-component", "dispatcher"),
		handlersMap: make(map[string]HandlersChain),
	}
	d.register(CmdNick, handleNick)
	d.register(CmdUser, handleUser)
	d.register(CmdJoin, handleJoin)
	d.register(CmdPrivMsg, handlePrivmsg)
	d.register(CmdKick, handleKick)
	d.register(CmdMode, handleMode)
	d.register(CmdInvite, handleInvite)
	d.register(CmdTopic, handleTopic)
	d.register(CmdPart, handlePart)
	d.register(CmdNames, handleNames)
	d.register(CmdWho, handleWho)
	d.register(CmdList, handleList)
	d.register(CmdQuit, handleQuit)
	return d
}

func (d *Dispatcher) register(verb string, handlers ...CommandHandler) {
	if _, exists := d.handlersMap[verb]; exists {
		panic(fmt.Sprintf("handler(s) already registered for verb: %s", verb))
	}
	d.handlersMap[verb] = handlers
}

// Dispatch routes one parsed Command from an authenticated client to its
// handler chain. Unknown verbs get a single reply line and are otherwise
// ignored, per spec.md 4.2.
func (d *Dispatcher) Dispatch(server *Server, client *Client, cmd *Command) {
	defer commandPool.Recycle(cmd)

	log := d.logger.WithField("verb", cmd.Verb).WithField("trace", client.Trace())

	handlers, exists := d.handlersMap[cmd.Verb]
	if !exists {
		client.conn.replyUnknownCommand()
		log.Debug("unknown command")
		return
	}

	ctx := &CommandContext{Client: client, Cmd: cmd, server: server}

	for i := range handlers {
		ctx.handler = nameOfFunction(handlers[i])
		handlers[i](ctx)
		if ctx.handled {
			return
		}
		if ctx.err != nil {
			log.Warn(fmt.Errorf("error handling command in handler [%s]: %w", ctx.handler, ctx.err))
		}
		if ctx.abort {
			log.Debugf("command handler chain aborted at: %s", ctx.handler)
			return
		}
	}
}

func nameOfFunction(f any) string {
	return path.Base(runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name())
}

func enoughArgs(cmd *Command, expected int) bool {
	return cmd.NArgs() >= expected
}

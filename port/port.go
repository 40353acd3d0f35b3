// Package port provides the buffered port implementation shared by the
// accelerator components.
package port

import (
	"fmt"
	"sync"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosMsgSend marks when a message is sent out from the port.
var HookPosMsgSend = &sim.HookPos{Name: "Port Msg Send"}

// HookPosMsgRecvd marks when an inbound message arrives at the port.
var HookPosMsgRecvd = &sim.HookPos{Name: "Port Msg Recv"}

// HookPosMsgRetrieve marks when a message is taken out of a buffer.
var HookPosMsgRetrieve = &sim.HookPos{Name: "Port Msg Retrieve"}

type bufferedPort struct {
	sim.HookableBase

	lock sync.Mutex
	name string
	comp sim.Component
	conn sim.Connection

	incomingBuf sim.Buffer
	outgoingBuf sim.Buffer
}

// New creates a buffered port owned by comp.
func New(
	comp sim.Component,
	incomingBufCap, outgoingBufCap int,
	name string,
) sim.Port {
	p := new(bufferedPort)
	p.comp = comp
	p.incomingBuf = sim.NewBuffer(name+".IncomingBuf", incomingBufCap)
	p.outgoingBuf = sim.NewBuffer(name+".OutgoingBuf", outgoingBufCap)
	p.name = name

	return p
}

// AsRemote returns the remote port name.
func (p *bufferedPort) AsRemote() sim.RemotePort {
	return sim.RemotePort(p.name)
}

// SetConnection sets which connection is plugged into this port.
func (p *bufferedPort) SetConnection(conn sim.Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf("connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name()))
	}
	p.conn = conn
}

// Component returns the owner component of the port.
func (p *bufferedPort) Component() sim.Component {
	return p.comp
}

// Name returns the name of the port.
func (p *bufferedPort) Name() string {
	return p.name
}

// CanSend checks if the port can send a message without error.
func (p *bufferedPort) CanSend() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoingBuf.CanPush()
}

// Send is used to send a message out from a component.
func (p *bufferedPort) Send(msg sim.Msg) *sim.SendError {
	p.lock.Lock()

	p.msgMustBeValid(msg)

	if !p.outgoingBuf.CanPush() {
		p.lock.Unlock()
		return sim.NewSendError()
	}

	wasEmpty := p.outgoingBuf.Size() == 0
	p.outgoingBuf.Push(msg)

	hookCtx := sim.HookCtx{
		Domain: p,
		Pos:    HookPosMsgSend,
		Item:   msg,
	}
	p.InvokeHook(hookCtx)
	p.lock.Unlock()

	if wasEmpty {
		p.conn.NotifySend()
	}

	return nil
}

// Deliver is used by the connection to hand a message to the component.
func (p *bufferedPort) Deliver(msg sim.Msg) *sim.SendError {
	p.lock.Lock()

	if !p.incomingBuf.CanPush() {
		p.lock.Unlock()
		return sim.NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0

	hookCtx := sim.HookCtx{
		Domain: p,
		Pos:    HookPosMsgRecvd,
		Item:   msg,
	}
	p.InvokeHook(hookCtx)

	p.incomingBuf.Push(msg)
	p.lock.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming takes a message from the incoming buffer.
func (p *bufferedPort) RetrieveIncoming() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Pop()
	if item == nil {
		return nil
	}

	msg := item.(sim.Msg)
	hookCtx := sim.HookCtx{
		Domain: p,
		Pos:    HookPosMsgRetrieve,
		Item:   msg,
	}
	p.InvokeHook(hookCtx)

	if p.incomingBuf.Size() == p.incomingBuf.Capacity()-1 {
		p.conn.NotifyAvailable(p)
	}

	return msg
}

// RetrieveOutgoing takes a message from the outgoing buffer.
func (p *bufferedPort) RetrieveOutgoing() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Pop()
	if item == nil {
		return nil
	}

	msg := item.(sim.Msg)
	hookCtx := sim.HookCtx{
		Domain: p,
		Pos:    HookPosMsgRetrieve,
		Item:   msg,
	}
	p.InvokeHook(hookCtx)

	if p.comp != nil && p.outgoingBuf.Size() == p.outgoingBuf.Capacity()-1 {
		p.comp.NotifyPortFree(p)
	}

	return msg
}

// PeekIncoming returns the first incoming message without removing it.
func (p *bufferedPort) PeekIncoming() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.incomingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(sim.Msg)
}

// PeekOutgoing returns the first outgoing message without removing it.
func (p *bufferedPort) PeekOutgoing() sim.Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	item := p.outgoingBuf.Peek()
	if item == nil {
		return nil
	}

	return item.(sim.Msg)
}

// NotifyAvailable is called by the connection when it can deliver
// again.
func (p *bufferedPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

func (p *bufferedPort) msgMustBeValid(msg sim.Msg) {
	if p.Name() != string(msg.Meta().Src) {
		panic("sending port is not msg src")
	}
	if msg.Meta().Dst == "" {
		panic("dst is not given")
	}
	if msg.Meta().Src == msg.Meta().Dst {
		panic("sending back to src")
	}
}

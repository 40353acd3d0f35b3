package port

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"
)

type TestMsg sim.MsgMeta

func (m *TestMsg) Meta() *sim.MsgMeta {
	return (*sim.MsgMeta)(m)
}

func (m *TestMsg) Clone() sim.Msg {
	clone := *m
	clone.ID = sim.GetIDGenerator().Generate()
	return &clone
}

func newTestMsg(src, dst sim.RemotePort) *TestMsg {
	return &TestMsg{
		ID:  sim.GetIDGenerator().Generate(),
		Src: src,
		Dst: dst,
	}
}

var _ = Describe("BufferedPort", func() {
	var (
		engine  sim.Engine
		port    sim.Port
		dstPort sim.Port
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()

		port = New(nil, 2, 2, "PortA")
		dstPort = New(nil, 4, 4, "PortB")

		conn := directconnection.MakeBuilder().
			WithEngine(engine).
			Build("TestConn")
		conn.PlugIn(port)
		conn.PlugIn(dstPort)
	})

	It("should return port name", func() {
		Expect(port.Name()).To(Equal("PortA"))
		Expect(port.AsRemote()).To(Equal(sim.RemotePort("PortA")))
	})

	It("should buffer sent messages in order", func() {
		msg1 := newTestMsg(port.AsRemote(), dstPort.AsRemote())
		msg2 := newTestMsg(port.AsRemote(), dstPort.AsRemote())

		Expect(port.Send(msg1)).To(BeNil())
		Expect(port.Send(msg2)).To(BeNil())

		Expect(port.PeekOutgoing()).To(BeIdenticalTo(msg1))
		Expect(port.RetrieveOutgoing()).To(BeIdenticalTo(msg1))
		Expect(port.RetrieveOutgoing()).To(BeIdenticalTo(msg2))
		Expect(port.RetrieveOutgoing()).To(BeNil())
	})

	It("should backpressure when the outgoing buffer is full", func() {
		Expect(port.Send(newTestMsg(port.AsRemote(), dstPort.AsRemote()))).
			To(BeNil())
		Expect(port.Send(newTestMsg(port.AsRemote(), dstPort.AsRemote()))).
			To(BeNil())

		Expect(port.CanSend()).To(BeFalse())
		err := port.Send(newTestMsg(port.AsRemote(), dstPort.AsRemote()))
		Expect(err).ToNot(BeNil())
	})

	It("should hand delivered messages to the receiver", func() {
		msg := newTestMsg(dstPort.AsRemote(), port.AsRemote())

		Expect(port.Deliver(msg)).To(BeNil())
		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg))
		Expect(port.RetrieveIncoming()).To(BeNil())
	})

	It("should refuse delivery when the incoming buffer is full", func() {
		Expect(port.Deliver(newTestMsg(dstPort.AsRemote(), port.AsRemote()))).
			To(BeNil())
		Expect(port.Deliver(newTestMsg(dstPort.AsRemote(), port.AsRemote()))).
			To(BeNil())

		err := port.Deliver(newTestMsg(dstPort.AsRemote(), port.AsRemote()))
		Expect(err).ToNot(BeNil())
	})

	Describe("Handle exception", func() {
		It("should reject nil message", func() {
			Expect(func() { port.Send(nil) }).To(Panic())
		})

		It("should reject a message not sourced at this port", func() {
			msg := newTestMsg(dstPort.AsRemote(), port.AsRemote())
			Expect(func() { port.Send(msg) }).To(Panic())
		})

		It("should reject a message with no destination", func() {
			msg := newTestMsg(port.AsRemote(), "")
			Expect(func() { port.Send(msg) }).To(Panic())
		})

		It("should reject a message sent back to its source", func() {
			msg := newTestMsg(port.AsRemote(), port.AsRemote())
			Expect(func() { port.Send(msg) }).To(Panic())
		})

		It("should reject double connection", func() {
			conn := directconnection.MakeBuilder().
				WithEngine(engine).
				Build("SecondConn")
			Expect(func() { port.SetConnection(conn) }).To(Panic())
		})
	})
})

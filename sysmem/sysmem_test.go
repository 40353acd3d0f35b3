package sysmem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/port"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/sysmem"
	valgen "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/util"
)

var _ = Describe("SysMem", func() {
	var (
		engine sim.Engine
		memory *sysmem.Comp
		agent  sim.Port
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		memory = sysmem.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithLatency(10).
			WithCapacity(1 << 16).
			Build("SysMem")

		agent = port.New(nil, 8, 8, "Agent")
		conn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Conn")
		conn.PlugIn(memory.TopPort())
		conn.PlugIn(agent)
	})

	It("should store and load functionally", func() {
		data := valgen.Bytes(4, valgen.MakeXorShiftGen(0x2a))

		Expect(memory.Write(0x100, data)).To(Succeed())
		got, err := memory.Read(0x100, uint64(len(data)))
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(data))
	})

	It("should serve a timed read from staged data", func() {
		data := valgen.Bytes(2, valgen.MakeIncreasingGen(7))
		Expect(memory.Write(0x40, data)).To(Succeed())

		req := mem.ReadReqBuilder{}.
			WithAddress(0x40).
			WithByteSize(8).
			WithSrc(agent.AsRemote()).
			WithDst(memory.TopPort().AsRemote()).
			Build()
		Expect(agent.Send(req)).To(BeNil())
		Expect(engine.Run()).To(Succeed())

		item := agent.RetrieveIncoming()
		Expect(item).ToNot(BeNil())
		rsp := item.(*mem.DataReadyRsp)
		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Data).To(Equal(data))
	})

	It("should apply a timed write and acknowledge it", func() {
		data := valgen.Bytes(2, valgen.MakeConstGen(0xdeadbeef))

		req := mem.WriteReqBuilder{}.
			WithAddress(0x80).
			WithData(data).
			WithSrc(agent.AsRemote()).
			WithDst(memory.TopPort().AsRemote()).
			Build()
		Expect(agent.Send(req)).To(BeNil())
		Expect(engine.Run()).To(Succeed())

		item := agent.RetrieveIncoming()
		Expect(item).ToNot(BeNil())
		rsp := item.(*mem.WriteDoneRsp)
		Expect(rsp.RespondTo).To(Equal(req.ID))

		got, err := memory.Read(0x80, uint64(len(data)))
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(data))
	})

	It("should respond in arrival order", func() {
		Expect(memory.Write(0x00, valgen.Bytes(1, valgen.MakeConstGen(1)))).
			To(Succeed())
		Expect(memory.Write(0x08, valgen.Bytes(1, valgen.MakeConstGen(2)))).
			To(Succeed())

		req1 := mem.ReadReqBuilder{}.
			WithAddress(0x00).
			WithByteSize(4).
			WithSrc(agent.AsRemote()).
			WithDst(memory.TopPort().AsRemote()).
			Build()
		req2 := mem.ReadReqBuilder{}.
			WithAddress(0x08).
			WithByteSize(4).
			WithSrc(agent.AsRemote()).
			WithDst(memory.TopPort().AsRemote()).
			Build()
		Expect(agent.Send(req1)).To(BeNil())
		Expect(agent.Send(req2)).To(BeNil())
		Expect(engine.Run()).To(Succeed())

		first := agent.RetrieveIncoming().(*mem.DataReadyRsp)
		second := agent.RetrieveIncoming().(*mem.DataReadyRsp)
		Expect(first.RespondTo).To(Equal(req1.ID))
		Expect(second.RespondTo).To(Equal(req2.ID))
	})
})

package dma

import "github.com/sarchlab/akita/v4/sim"

// CopyReq asks an accelerator to move bytes between system memory and
// its scratchpad.
type CopyReq struct {
	sim.MsgMeta

	Dir      Direction
	SysAddr  uint64
	SPMAddr  uint64
	NumBytes uint64
}

// Meta returns the meta data of the msg.
func (r *CopyReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone copies the msg under a fresh ID.
func (r *CopyReq) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()
	return &c
}

// CopyReqBuilder is a factory for CopyReq.
type CopyReqBuilder struct {
	src, dst sim.RemotePort
	dir      Direction
	sysAddr  uint64
	spmAddr  uint64
	numBytes uint64
}

// WithSrc sets the source port of the msg.
func (b CopyReqBuilder) WithSrc(src sim.RemotePort) CopyReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b CopyReqBuilder) WithDst(dst sim.RemotePort) CopyReqBuilder {
	b.dst = dst
	return b
}

// WithDirection sets the copy direction.
func (b CopyReqBuilder) WithDirection(dir Direction) CopyReqBuilder {
	b.dir = dir
	return b
}

// WithSysAddr sets the system-memory address.
func (b CopyReqBuilder) WithSysAddr(addr uint64) CopyReqBuilder {
	b.sysAddr = addr
	return b
}

// WithSPMAddr sets the scratchpad address.
func (b CopyReqBuilder) WithSPMAddr(addr uint64) CopyReqBuilder {
	b.spmAddr = addr
	return b
}

// WithNumBytes sets the transfer size.
func (b CopyReqBuilder) WithNumBytes(n uint64) CopyReqBuilder {
	b.numBytes = n
	return b
}

// Build creates a CopyReq.
func (b CopyReqBuilder) Build() *CopyReq {
	return &CopyReq{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		Dir:      b.dir,
		SysAddr:  b.sysAddr,
		SPMAddr:  b.spmAddr,
		NumBytes: b.numBytes,
	}
}

// CopyDoneRsp reports a finished copy back to the requester.
type CopyDoneRsp struct {
	sim.MsgMeta

	RspTo string
}

// Meta returns the meta data of the msg.
func (r *CopyDoneRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone copies the msg under a fresh ID.
func (r *CopyDoneRsp) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()
	return &c
}

// CopyDoneRspBuilder is a factory for CopyDoneRsp.
type CopyDoneRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
}

// WithSrc sets the source port of the msg.
func (b CopyDoneRspBuilder) WithSrc(src sim.RemotePort) CopyDoneRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b CopyDoneRspBuilder) WithDst(dst sim.RemotePort) CopyDoneRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo names the request being answered.
func (b CopyDoneRspBuilder) WithRspTo(id string) CopyDoneRspBuilder {
	b.rspTo = id
	return b
}

// Build creates a CopyDoneRsp.
func (b CopyDoneRspBuilder) Build() *CopyDoneRsp {
	return &CopyDoneRsp{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		RspTo: b.rspTo,
	}
}

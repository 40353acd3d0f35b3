package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/api"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/core"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/sysmem"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
)

const (
	hostA = 0x100
	hostB = 0x200
	hostC = 0x300

	spmA = 0x00
	spmB = 0x40
	spmC = 0x80

	n = 8
)

func expected(a, b uint32) uint32 {
	return (a & b) | ((a ^ b) << 1)
}

func toBytes(ws []uint32) []byte {
	buf := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

func toWords(buf []byte) []uint32 {
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return out
}

func main() {
	mod, err := ir.ParseFile("bitwise.ll")
	if err != nil {
		panic(err)
	}
	cfg, err := config.Load("config.yaml")
	if err != nil {
		panic(err)
	}

	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	sink := telemetry.NewRateLimited(
		telemetry.NewSlogSink(slog.Default()), 100)

	acc, err := core.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithConfig(cfg).
		WithModule(mod).
		WithTelemetry(sink).
		Build("Acc")
	if err != nil {
		panic(err)
	}

	memory := sysmem.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("SysMem")

	driver.RegisterAccelerator(acc)
	driver.RegisterMemory(memory)

	a := []uint32{0x0f, 0xf0, 0xaa, 0x55, 0x01, 0x80, 0xff, 0x3c}
	b := []uint32{0xff, 0x0f, 0x55, 0x55, 0x01, 0x81, 0x00, 0xc3}
	if err := driver.WriteMemory(hostA, toBytes(a)); err != nil {
		panic(err)
	}
	if err := driver.WriteMemory(hostB, toBytes(b)); err != nil {
		panic(err)
	}

	driver.CopyToDevice(spmA, hostA, 4*n)
	driver.CopyToDevice(spmB, hostB, 4*n)
	driver.SetArg(0, spmA)
	driver.SetArg(1, spmB)
	driver.SetArg(2, spmC)
	driver.SetArg(3, n)
	driver.Start()
	driver.Wait()
	driver.CopyFromDevice(hostC, spmC, 4*n)
	driver.Run()

	buf, err := driver.ReadMemory(hostC, 4*n)
	if err != nil {
		panic(err)
	}
	c := toWords(buf)

	fmt.Println(acc.StatsReport())

	for i := range c {
		if c[i] != expected(a[i], b[i]) {
			fmt.Printf("MISMATCH at %d: got 0x%x, want 0x%x\n",
				i, c[i], expected(a[i], b[i]))
			atexit.Exit(1)
		}
	}
	fmt.Println("PASS")
	atexit.Exit(0)
}

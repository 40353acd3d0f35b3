package main

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/api"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/core"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/sysmem"
)

const (
	hostA = 0x1000
	hostB = 0x2000
	hostC = 0x3000

	spmA = 0x00
	spmB = 0x10
	spmC = 0x20

	n = 4
)

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
	mod, err := ir.ParseFile("vectoradd.ll")
	if err != nil {
		panic(err)
	}

	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	acc, err := core.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithModule(mod).
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

	a := []uint32{1, 2, 3, 4}
	b := []uint32{20, 60, 120, 200}
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

	fmt.Println("a:", a)
	fmt.Println("b:", b)
	fmt.Println("c:", c)
	fmt.Printf("cycles: %d\n", acc.TotalCycles())

	for i := range c {
		if c[i] != a[i]+b[i] {
			fmt.Printf("MISMATCH at %d: got %d, want %d\n", i, c[i], a[i]+b[i])
			atexit.Exit(1)
		}
	}
	fmt.Println("PASS")
	atexit.Exit(0)
}

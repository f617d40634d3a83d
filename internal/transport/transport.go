// Package transport implements the autograder's JSON request/response
// protocol: one request read from an io.Reader, one response written to an
// io.Writer, per process invocation.
package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/machine"
)

// Request is the autograder's input document: source to assemble and run,
// plus optional initial register/memory seeding and a list of addresses
// whose final values should be reported back.
type Request struct {
	SourceCode       string           `json:"source_code"`
	InitialRegisters map[string]int64 `json:"initial_registers,omitempty"`
	InitialMemory    map[string]int64 `json:"initial_memory,omitempty"`
	CheckMemory      []uint64         `json:"check_memory,omitempty"`
}

// Response is the autograder's output document. Registers always contains
// the full 32-register set; Memory contains only the addresses named in
// the request's CheckMemory, keyed as 0x-prefixed lowercase hex strings.
type Response struct {
	Registers map[string]int64 `json:"registers"`
	Memory    map[string]int64 `json:"memory"`
	Error     string           `json:"error"`
}

// Run reads one Request as JSON from in, drives a fresh Machine through it,
// and writes the resulting Response as JSON to out.
func Run(in io.Reader, out io.Writer) error {
	var req Request

	dec := json.NewDecoder(in)
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("transport: decode request: %w", err)
	}

	resp := Process(req)

	enc := json.NewEncoder(out)

	return enc.Encode(resp)
}

// Process runs req against a fresh Machine and returns the autograder
// Response: load, then register and memory seeding, then run, so the
// seeded values survive the load's reset and are visible to the executing
// program.
func Process(req Request) Response {
	m := machine.New(nil)

	res := m.LoadSource(req.SourceCode)
	if res.Error != "" {
		return Response{
			Registers: zeroRegisters(),
			Memory:    map[string]int64{},
			Error:     res.Error,
		}
	}

	cpu := m.CPU()

	for name, v := range req.InitialRegisters {
		if r, ok := inst.LookupRegister(name); ok {
			cpu.Registers.Set(r, uint32(v))
		}
	}

	for addrStr, v := range req.InitialMemory {
		addr, err := strconv.ParseUint(addrStr, 0, 32)
		if err != nil {
			continue
		}

		_ = cpu.Memory.SetWord(uint32(addr), int32(v))
	}

	runRes := m.Run()

	regs := make(map[string]int64, len(runRes.Snapshot.Registers))
	for name, v := range runRes.Snapshot.Registers {
		regs[name] = int64(int32(v)) // Sign-extended from 32-bit, per the protocol.
	}

	mem := make(map[string]int64, len(req.CheckMemory))

	for _, addr := range req.CheckMemory {
		v, err := cpu.Memory.LoadWord(uint32(addr))
		if err != nil {
			continue
		}

		mem[fmt.Sprintf("0x%x", addr)] = int64(v)
	}

	errStr := runRes.Error
	if errStr == "Termination" {
		errStr = "" // Normal completion is success from the autograder's perspective.
	}

	return Response{Registers: regs, Memory: mem, Error: errStr}
}

func zeroRegisters() map[string]int64 {
	names := []string{
		"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
		"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
		"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
		"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
	}

	out := make(map[string]int64, len(names))
	for _, n := range names {
		out[n] = 0
	}

	return out
}

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/cslab-edu/gomips32/internal/machine"
)

// registerOrder is the order a snapshot's registers print in, matching the
// canonical MIPS register numbering rather than alphabetical key order.
var registerOrder = []string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func printSnapshot(out io.Writer, snap machine.Snapshot) {
	for _, name := range registerOrder {
		fmt.Fprintf(out, "  $%-4s 0x%08x\n", name, snap.Registers[name])
	}

	if snap.LastMemValid {
		fmt.Fprintf(out, "  last_mem_access: addr=0x%08x size=%d\n", snap.LastMemAddr, snap.LastMemSize)
	} else {
		fmt.Fprintln(out, "  last_mem_access: none")
	}

	if len(snap.Devices) == 0 {
		return
	}

	addrs := make([]uint32, 0, len(snap.Devices))
	for addr := range snap.Devices {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		fmt.Fprintf(out, "  device 0x%08x: %s = %v\n", addr, snap.Devices[addr].Name, snap.Devices[addr].Fields)
	}
}

// Package bus implements the NES system bus: the top-level orchestrator
// tying CPU, PPU, APU, cartridge, and controllers together on a single
// master tick, and the CPU-facing address-space router.
package bus

import (
	"nescore/internal/apu"
	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/input"
	"nescore/internal/memory"
	"nescore/internal/ppu"
)

// Bus is the complete system: CPU, PPU, APU, cartridge, RAM, controllers,
// and the DMA state machine, advanced one master tick (one PPU dot) at a
// time.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState
	Cart   *cartridge.Cartridge

	masterTick uint64
	cpuCycles  uint64
	frameCount uint64

	dma            dmaState
	dmcStallRemain int // CPU cycles still held for an in-flight DMC sample fetch

	breakpoints map[uint16]bool
}

// dmaState is the OAM DMA transfer state machine: a 256-byte page copy
// from CPU space into PPU OAM, with a one-cycle dummy alignment phase and
// 513/514-cycle duration depending on whether its first cycle is an odd CPU
// cycle.
type dmaState struct {
	active      bool
	page        uint8
	addr        uint8
	data        uint8
	dummy       bool // true until the alignment cycle has been consumed
	oddCPU      bool // true when the DMA's first cycle is an odd CPU cycle
	waitToWrite bool // true once a byte has been read and is awaiting its write cycle
}

// New creates a Bus with no cartridge loaded.
func New() *Bus {
	b := &Bus{
		PPU:         ppu.New(),
		APU:         apu.New(),
		Input:       input.NewInputState(),
		breakpoints: make(map[uint16]bool),
	}
	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetDMACallback(b.requestOAMDMA)
	b.APU.SetMemoryReader(b.Memory.Read)
	b.CPU = cpu.New(b.Memory)
	return b
}

// LoadCartridge installs a cartridge, wires it to the PPU and memory
// router, and resets the CPU from the new cartridge's reset vector.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cart = cart
	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetDMACallback(b.requestOAMDMA)
	b.APU.SetMemoryReader(b.Memory.Read)
	b.CPU = cpu.New(b.Memory)
	b.PPU.SetMapper(cart)
	b.Reset()
}

// Reset restores power-on state across all components.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	if b.Cart != nil {
		b.Cart.Reset()
	}
	b.masterTick = 0
	b.cpuCycles = 0
	b.frameCount = 0
	b.dma = dmaState{}
	b.dmcStallRemain = 0
}

// requestOAMDMA is the memory router's $4014 write callback: it arms the
// DMA state machine rather than performing the transfer inline, so the
// transfer proceeds one byte per two CPU cycles exactly as hardware does
// (and correctly stalls CPU instruction fetches mid-transfer).
func (b *Bus) requestOAMDMA(page uint8) {
	if b.dma.active {
		return
	}
	b.dma = dmaState{
		active: true,
		page:   page,
		addr:   b.PPU.OAMAddr(),
		dummy:  true,
		oddCPU: b.cpuCycles%2 == 0, // the $4014 write is on cpuCycles; the DMA starts on the next cycle
	}
}

// IsDMAInProgress reports whether an OAM DMA transfer is in progress.
func (b *Bus) IsDMAInProgress() bool { return b.dma.active }

// Clock advances the system by one master tick: PPU, then APU sampling,
// then (every third tick) either the CPU or one step of an active OAM
// DMA transfer, then NMI/IRQ delivery. This ordering is fixed and must
// not be reordered.
func (b *Bus) Clock() {
	b.PPU.Clock()
	b.APU.TickSample()

	if b.masterTick%3 == 0 {
		b.clockCPUCycle()
		b.cpuCycles++
	}

	if b.PPU.NMI() {
		b.CPU.SetNMI(true)
	} else {
		b.CPU.SetNMI(false)
	}
	if b.Cart != nil {
		b.CPU.SetIRQ(b.Cart.IRQPending())
	}

	if b.PPU.FrameComplete() {
		b.frameCount++
	}

	b.masterTick++
}

// clockCPUCycle performs one CPU-rate tick: APU channel/frame-sequencer
// clocking always happens; then either the CPU executes (or continues an
// in-flight instruction), or, if an OAM DMA is active or a DMC sample
// fetch has requested stall cycles, the CPU is held idle for this tick
// instead — exactly as hardware holds the CPU off the bus during both.
func (b *Bus) clockCPUCycle() {
	b.APU.Clock()
	if b.Cart != nil {
		b.Cart.Clock()
	}

	if b.dma.active {
		b.stepOAMDMA()
		return
	}

	if b.dmcStallRemain > 0 {
		b.dmcStallRemain--
		return
	}
	if stall := b.APU.ConsumeDMCStall(); stall > 0 {
		b.dmcStallRemain = stall - 1
		return
	}

	b.CPU.Clock()
}

// stepOAMDMA advances the DMA state machine by one CPU cycle: a one-cycle
// dummy alignment phase (two on an odd-cycle start), then alternating
// read (from (page<<8)|addr) and write (to PPU OAM) cycles until all 256
// bytes have moved.
func (b *Bus) stepOAMDMA() {
	d := &b.dma
	if d.dummy {
		if d.oddCPU {
			d.oddCPU = false // the extra alignment cycle of an odd-cycle start
			return
		}
		d.dummy = false
		return
	}

	if !d.waitToWrite {
		d.data = b.Memory.Read((uint16(d.page) << 8) | uint16(d.addr))
		d.waitToWrite = true
		return
	}

	b.PPU.WriteOAM(d.addr, d.data)
	d.waitToWrite = false
	d.addr++
	if d.addr == 0 {
		d.active = false
	}
}

// Step runs master ticks until at least one CPU cycle has elapsed and the
// CPU is back on an instruction boundary with no OAM DMA or DMC stall
// cycles still pending, so one call completes one instruction (or the
// reset sequence / interrupt entry in flight) together with any stall it
// triggered.
func (b *Bus) Step() {
	start := b.cpuCycles
	b.Clock()
	for b.cpuCycles == start || !b.CPU.AtInstructionBoundary() || b.dma.active || b.dmcStallRemain > 0 {
		b.Clock()
	}
}

// Frame runs master ticks until the PPU signals a completed frame, or
// until the CPU halts on a breakpoint at an instruction boundary.
func (b *Bus) Frame() {
	startFrame := b.frameCount
	for b.frameCount == startFrame {
		b.Clock()
		if b.CPU.AtInstructionBoundary() && b.breakpoints[b.CPU.PC] {
			return
		}
	}
}

// AddBreakpoint arms a breakpoint at the given PC; Frame stops early when
// the CPU reaches it on an instruction boundary.
func (b *Bus) AddBreakpoint(pc uint16) { b.breakpoints[pc] = true }

// RemoveBreakpoint disarms a previously added breakpoint.
func (b *Bus) RemoveBreakpoint(pc uint16) { delete(b.breakpoints, pc) }

// GetFrameBuffer returns the current PPU frame buffer as a flat RGB slice.
func (b *Bus) GetFrameBuffer() []uint32 {
	fb := b.PPU.FrameBuffer()
	return fb[:]
}

// GetAudioSamples drains every mixed sample the APU has ready.
func (b *Bus) GetAudioSamples() []float32 {
	samples := make([]float32, 0, 1024)
	for b.APU.SampleReady() {
		samples = append(samples, b.APU.Sample())
	}
	return samples
}

// SetAudioSampleRate sets the target audio sample rate for the APU.
func (b *Bus) SetAudioSampleRate(rate int) { b.APU.SetSampleRate(rate) }

// GetCycleCount returns the current CPU cycle count.
func (b *Bus) GetCycleCount() uint64 { return b.cpuCycles }

// GetFrameCount returns the current completed-frame count.
func (b *Bus) GetFrameCount() uint64 { return b.frameCount }

// GetInputState returns the input state for direct access.
func (b *Bus) GetInputState() *input.InputState { return b.Input }

// SetControllerButtons sets all button states for a controller (1 or 2;
// 0 is accepted as an alias for controller 1).
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// SetControllerButton sets a single button's state for a controller.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0, 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// Peek reads CPU address space without the read side effects a real
// access would have on PPU/APU registers, for use by the trace debugger.
// RAM and cartridge-space reads go through the memory router, which has no
// read side effects there; the register range $2000-$401F is not read at
// all and always peeks as 0.
func (b *Bus) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.Memory.Read(address)
	case address < 0x4020:
		return 0 // register peeks are not used by the trace format
	default:
		return b.Memory.Read(address)
	}
}

// CPUState is a snapshot of CPU registers and flags, used for save
// states and debugging.
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags is a snapshot of the 6502 status flags.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetCPUState returns the current CPU state for save states and testing.
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: b.CPU.N, V: b.CPU.V, B: b.CPU.B,
			D: b.CPU.D, I: b.CPU.I, Z: b.CPU.Z, C: b.CPU.C,
		},
	}
}

// PPUState is a snapshot of PPU timing/status, used for save states and
// debugging.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
	NMIEnabled  bool
}

// GetPPUState returns the current PPU state for save states and testing,
// with no read-and-clear register side effects.
func (b *Bus) GetPPUState() PPUState {
	return PPUState{
		Scanline:    b.PPU.Scanline(),
		Cycle:       b.PPU.Cycle(),
		FrameCount:  b.frameCount,
		VBlankFlag:  b.PPU.VBlankFlag(),
		RenderingOn: b.PPU.RenderingEnabled(),
		NMIEnabled:  b.PPU.NMIEnabled(),
	}
}

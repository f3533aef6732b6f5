package cpu

// Step runs the CPU from its current instruction boundary through the next
// one and reports the cycles consumed. Clock() is the production tick used by
// the bus, which must observe DMA stalls and PPU/APU timing between
// individual cycles; Step lets the CPU's own test suite drive the CPU in
// isolation, one instruction at a time.
func (cpu *CPU) Step() uint64 {
	start := cpu.cycles
	cpu.Clock()
	for !cpu.AtInstructionBoundary() {
		cpu.Clock()
	}
	return cpu.cycles - start
}

// GetStatusByte packs the flags into P, reporting the live B flag rather than
// the fixed value Instructions push.
func (cpu *CPU) GetStatusByte() uint8 { return cpu.statusByte(cpu.B) }

// SetStatusByte unpacks P into the flags, as PLP/RTI do.
func (cpu *CPU) SetStatusByte(p uint8) { cpu.setStatusByte(p) }

// TriggerNMI synchronously services an NMI, bypassing the edge-triggered
// latch SetNMI normally requires. It exists for tests that want to assert
// the interrupt sequence (pushed PC/status, vector, cycle count) without
// stepping a Clock() loop to reach it.
func (cpu *CPU) TriggerNMI() {
	cpu.serviceInterrupt(nmiVector, true)
	cpu.cycles += uint64(cpu.residual)
	cpu.residual = 0
}

// TriggerIRQ synchronously services an IRQ if the interrupt disable flag is
// clear, mirroring the level-triggered check Clock() performs, but without
// requiring a pending level on the IRQ line.
func (cpu *CPU) TriggerIRQ() {
	if cpu.I {
		return
	}
	cpu.serviceInterrupt(irqVector, false)
	cpu.cycles += uint64(cpu.residual)
	cpu.residual = 0
}

// SetIRQPending asserts a test-only deferred IRQ, serviced only by a later
// ProcessPendingInterrupts call rather than at the next Clock() boundary, so
// tests can assert that an in-flight instruction finishes first.
func (cpu *CPU) SetIRQPending() { cpu.deferredIRQ = true }

// ClearNMIPending cancels a latched NMI request without servicing it.
func (cpu *CPU) ClearNMIPending() { cpu.nmiPending = false }

// ProcessPendingInterrupts synchronously services a latched NMI, or failing
// that a deferred IRQ set by SetIRQPending, exactly like TriggerNMI/TriggerIRQ
// but sourced from the pending flags instead of being invoked directly.
func (cpu *CPU) ProcessPendingInterrupts() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.serviceInterrupt(nmiVector, true)
		cpu.cycles += uint64(cpu.residual)
		cpu.residual = 0
		return
	}
	if cpu.deferredIRQ && !cpu.I {
		cpu.deferredIRQ = false
		cpu.serviceInterrupt(irqVector, false)
		cpu.cycles += uint64(cpu.residual)
		cpu.residual = 0
	}
}

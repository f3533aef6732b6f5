package apu

import "testing"

func TestChannelEnableLoadsLengthCounterOnly(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01) // enable pulse1 only

	if !a.IsChannelEnabled(0) {
		t.Error("pulse1 should be enabled")
	}
	if a.IsChannelEnabled(1) {
		t.Error("pulse2 should remain disabled")
	}
}

func TestDisablingChannelClearsLengthCounter(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0x00) // duty/envelope
	a.WriteRegister(0x4003, 0x08) // length index 1 -> lengthTable[1] = 254

	if a.pulse1.lengthCounter == 0 {
		t.Fatal("writing $4003 should load a nonzero length counter")
	}

	a.WriteRegister(0x4015, 0x00) // disable pulse1
	if a.pulse1.lengthCounter != 0 {
		t.Errorf("disabling pulse1 should clear its length counter, got %d", a.pulse1.lengthCounter)
	}
}

func TestReadStatusReportsLengthCountersAndClearsFrameIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x08) // loads pulse1's length counter
	a.frameIRQFlag = true

	status := a.ReadStatus()
	if status&0x01 == 0 {
		t.Error("status bit 0 should report pulse1's active length counter")
	}
	if status&0x40 == 0 {
		t.Error("status bit 6 should report the pending frame IRQ")
	}
	if a.GetFrameIRQ() {
		t.Error("ReadStatus should clear the frame IRQ flag as a side effect")
	}
}

func TestFourStepFrameSequencerRaisesIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4017, 0x00) // 4-step mode, IRQ enabled

	for i := 0; i < 29830; i++ {
		a.Clock()
	}

	if !a.GetFrameIRQ() {
		t.Error("4-step frame sequencer should raise the frame IRQ at step 29830")
	}
}

func TestFrameIRQInhibit(t *testing.T) {
	a := New()
	a.WriteRegister(0x4017, 0x40) // 4-step mode, IRQ inhibited

	for i := 0; i < 29830; i++ {
		a.Clock()
	}

	if a.GetFrameIRQ() {
		t.Error("frame IRQ should not fire when the inhibit bit is set")
	}
}

func TestFiveStepModeNeverRaisesFrameIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4017, 0x80) // 5-step mode

	for i := 0; i < 40000; i++ {
		a.Clock()
	}

	if a.GetFrameIRQ() {
		t.Error("5-step frame sequencer never raises the frame IRQ")
	}
}

func TestPulseTimerStepsDutyIndex(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0x3F) // duty, constant volume, full volume
	a.WriteRegister(0x4002, 0x00) // timer low
	a.WriteRegister(0x4003, 0x00) // timer high=0, period=0 -> reloads every Clock

	// A zero-period timer reloads to 0 and advances the duty index on
	// every step, since timerCounter == 0 is always true.
	for i := uint8(1); i <= 8; i++ {
		a.stepPulseTimer(&a.pulse1)
		if a.pulse1.dutyIndex != i&0x07 {
			t.Errorf("step %d: dutyIndex = %d, want %d", i, a.pulse1.dutyIndex, i&0x07)
		}
	}
}

func TestSampleAccumulatorProducesReadySample(t *testing.T) {
	a := New()
	a.SetSampleRate(44100)

	ready := false
	for i := 0; i < 200 && !ready; i++ {
		a.TickSample()
		ready = a.SampleReady()
	}

	if !ready {
		t.Fatal("TickSample never produced a ready sample")
	}

	_ = a.Sample() // must not panic
	if a.SampleReady() {
		t.Error("Sample() should clear the ready flag")
	}
}

func TestSampleWithNoneReadyPanics(t *testing.T) {
	a := New()
	defer func() {
		if recover() == nil {
			t.Error("Sample() with nothing ready should panic")
		}
	}()
	a.Sample()
}

func TestDMCStallConsumption(t *testing.T) {
	a := New()
	a.dmcStallCycles = 4

	n := a.ConsumeDMCStall()
	if n != 4 {
		t.Errorf("ConsumeDMCStall() = %d, want 4", n)
	}
	if a.ConsumeDMCStall() != 0 {
		t.Error("a second ConsumeDMCStall should report 0 once drained")
	}
}

func TestResetClearsChannelsAndFrameState(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x1F)
	a.WriteRegister(0x4003, 0x08)
	a.frameIRQFlag = true

	a.Reset()

	for i := 0; i < len(a.channelEnable); i++ {
		if a.IsChannelEnabled(i) {
			t.Errorf("channel %d should be disabled after Reset", i)
		}
	}
	if a.GetFrameIRQ() {
		t.Error("Reset should clear the frame IRQ flag")
	}
	if a.pulse1.lengthCounter != 0 {
		t.Error("Reset should clear pulse1's length counter")
	}
}

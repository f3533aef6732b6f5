package apu

// mix combines the five channels through the hardware's non-linear
// lookup-table mixer: pulses through one table, triangle/noise/DMC
// through a second, summed and scaled to [-1, 1].
func (a *APU) mix() float32 {
	pulse1 := a.pulseOutput(&a.pulse1)
	pulse2 := a.pulseOutput(&a.pulse2)
	triangle := a.triangleOutput()
	noise := a.noiseOutput()
	dmc := a.dmcOutput()

	pulseSum := float64(pulse1) + float64(pulse2)
	var pulseOut float64
	if pulseSum != 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	tndSum := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0
	var tndOut float64
	if tndSum != 0 {
		tndOut = 159.79 / (1.0/tndSum + 100.0)
	}

	// pulseOut+tndOut already lands in [0, 1]; center it into [-1, 1].
	return float32((pulseOut+tndOut)*2.0 - 1.0)
}

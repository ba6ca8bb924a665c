package synth

import "fmt"

// registerParams wires every param this Synth owns into the registry under
// its stable 3-5 character name (spec §6's "MVOL", "N1ATK", "ECDF" naming
// convention): N1 is the modulator stage, N2 the carrier, both taken from
// voice 0 (per-voice params are shared across the pool; sample-accurate
// per-voice divergence happens through inaccuracy/glide, not independent
// per-voice param ratios).
func (s *Synth) registerParams() {
	if len(s.voices) == 0 {
		return
	}
	v := s.voices[0]

	s.registry.Register("N1FRQ", v.Modulator.Osc.Frequency)
	s.registry.Register("N1FM", v.Modulator.FMLevel)
	s.registry.Register("N1AM", v.Modulator.AMLevel)
	s.registry.Register("N1FIF", v.Modulator.FilterIn.Frequency)
	s.registry.Register("N1FIQ", v.Modulator.FilterIn.Q)
	s.registry.Register("N1FOF", v.Modulator.FilterOut.Frequency)
	s.registry.Register("N1FOQ", v.Modulator.FilterOut.Q)
	s.registry.Register("N1ADD", v.ModulatorAddVolume())

	s.registry.Register("N2FRQ", v.Carrier.Osc.Frequency)
	s.registry.Register("N2FM", v.Carrier.FMLevel)
	s.registry.Register("N2AM", v.Carrier.AMLevel)
	s.registry.Register("N2FIF", v.Carrier.FilterIn.Frequency)
	s.registry.Register("N2FIQ", v.Carrier.FilterIn.Q)
	s.registry.Register("N2FOF", v.Carrier.FilterOut.Frequency)
	s.registry.Register("N2FOQ", v.Carrier.FilterOut.Q)
	s.registry.Register("N2DRV", v.Carrier.DriveLevel)

	e := s.effects
	s.registry.Register("F1FRQ", e.Filter1.Frequency)
	s.registry.Register("F1Q", e.Filter1.Q)
	s.registry.Register("F1GN", e.Filter1.GainDB)
	s.registry.Register("F2FRQ", e.Filter2.Frequency)
	s.registry.Register("F2Q", e.Filter2.Q)
	s.registry.Register("F2GN", e.Filter2.GainDB)
	s.registry.Register("VOL1", e.Volume1)
	s.registry.Register("ODWET", e.OverdriveWet)
	s.registry.Register("DIWET", e.DistortionWet)
	s.registry.Register("CHWET", e.ChorusWet)
	s.registry.Register("ECTM", e.Echo.Time)
	s.registry.Register("ECFB", e.Echo.Feedback)
	s.registry.Register("ECWET", e.Echo.Wet)
	s.registry.Register("ECDRY", e.Echo.Dry)
	s.registry.Register("ECDF", e.Echo.Damping.Frequency)
	s.registry.Register("RVWET", e.ReverbWet)
	s.registry.Register("RVDRY", e.ReverbDry)
	s.registry.Register("MVOL", e.Volume3)

	for i, m := range s.macros {
		s.registry.Register(fmt.Sprintf("MC%02dIN", i+1), m.Input)
		s.registry.Register(fmt.Sprintf("MC%02dMI", i+1), m.Midpoint)
		s.registry.Register(fmt.Sprintf("MC%02dMN", i+1), m.Min)
		s.registry.Register(fmt.Sprintf("MC%02dMX", i+1), m.Max)
		s.registry.Register(fmt.Sprintf("MC%02dSC", i+1), m.Scale)
		s.registry.Register(fmt.Sprintf("MC%02dDS", i+1), m.Distortion)
		s.registry.Register(fmt.Sprintf("MC%02dRN", i+1), m.Randomness)
	}

	for i, l := range s.lfos {
		s.registry.Register(fmt.Sprintf("LF%dFRQ", i+1), l.Frequency)
		s.registry.Register(fmt.Sprintf("LF%dDPT", i+1), l.Depth)
		s.registry.Register(fmt.Sprintf("LF%dOFS", i+1), l.Offset)
	}
}

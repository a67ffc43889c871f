package indicators

// emaState carries the exponential moving average recurrence for one
// period, seeded by the simple moving average of the first `period` closes.
type emaState struct {
	period int

	// Warm-up accumulation for the SMA seed.
	sum float64
	n   int

	value  float64
	seeded bool
}

func newEMAState(period int) emaState {
	return emaState{period: period}
}

// step feeds one close price into the recurrence. It returns false until
// `period` closes have been observed.
func (s *emaState) step(close float64) bool {
	if !s.seeded {
		s.sum += close
		s.n++
		if s.n < s.period {
			return false
		}
		s.value = s.sum / float64(s.period)
		s.seeded = true
		return true
	}

	multiplier := 2.0 / float64(s.period+1)
	s.value = (close-s.value)*multiplier + s.value
	return true
}

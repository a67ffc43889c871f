package indicators

// rsiState carries the Wilder recurrence for one RSI period: the previous
// close, the smoothed average gain/loss once seeded, and the plain sums
// accumulated during warm-up. Re-derivable from a full candle history.
type rsiState struct {
	period    int
	prevClose float64
	hasPrev   bool

	// Warm-up accumulation: simple sums over the first `period` deltas.
	sumGain float64
	sumLoss float64
	deltas  int

	avgGain float64
	avgLoss float64
	seeded  bool
}

func newRSIState(period int) rsiState {
	return rsiState{period: period}
}

// step feeds one close price into the recurrence. It returns false until
// `period` close-to-close deltas have been observed.
func (s *rsiState) step(close float64) bool {
	if !s.hasPrev {
		s.prevClose = close
		s.hasPrev = true
		return false
	}

	delta := close - s.prevClose
	s.prevClose = close

	if !s.seeded {
		if delta > 0 {
			s.sumGain += delta
		} else {
			s.sumLoss -= delta
		}
		s.deltas++
		if s.deltas < s.period {
			return false
		}
		// Seed with the simple mean of the first `period` deltas.
		s.avgGain = s.sumGain / float64(s.period)
		s.avgLoss = s.sumLoss / float64(s.period)
		s.seeded = true
		return true
	}

	// Wilder's smoothing: avg = (avg_prev*(period-1) + current) / period.
	p := float64(s.period)
	if delta > 0 {
		s.avgGain = (s.avgGain*(p-1) + delta) / p
		s.avgLoss = (s.avgLoss * (p - 1)) / p
	} else {
		s.avgGain = (s.avgGain * (p - 1)) / p
		s.avgLoss = (s.avgLoss*(p-1) - delta) / p
	}
	return true
}

// value returns the current RSI in [0,100]. Only meaningful once step has
// returned true. An average loss of exactly zero yields 100: a
// one-directional move, not an error.
func (s *rsiState) value() float64 {
	if s.avgLoss == 0 {
		return 100
	}

	rs := s.avgGain / s.avgLoss
	rsi := 100 - (100 / (1 + rs))

	if rsi > 100 {
		rsi = 100
	} else if rsi < 0 {
		rsi = 0
	}
	return rsi
}

package dice

// Scripted is a Source that replays a fixed sequence of d6 values, cycling
// back to the start once exhausted. Every draw (including the two draws of
// Roll2D6) consumes one value.
type Scripted struct {
	values   []int
	next     int
	consumed int
}

// NewScripted returns a Source replaying values. Values outside [1, 6] are
// clamped into range.
func NewScripted(values ...int) *Scripted {
	vs := make([]int, len(values))
	for i, v := range values {
		vs[i] = min(max(v, 1), 6)
	}
	if len(vs) == 0 {
		vs = []int{1}
	}
	return &Scripted{values: vs}
}

// Repeat builds a script of n copies of value.
func Repeat(value, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Concat joins several scripts into one.
func Concat(scripts ...[]int) []int {
	var out []int
	for _, s := range scripts {
		out = append(out, s...)
	}
	return out
}

// Consumed returns how many values have been drawn.
func (s *Scripted) Consumed() int {
	return s.consumed
}

func (s *Scripted) RollD6() int {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	s.consumed++
	return v
}

func (s *Scripted) Roll2D6() int {
	return s.RollD6() + s.RollD6()
}

func (s *Scripted) RollND6(n int) []int {
	return rollN(s, n)
}

// Roll maps the next scripted d6 value onto [1, sides].
func (s *Scripted) Roll(sides int) int {
	v := s.RollD6()
	if sides <= 1 {
		return 1
	}
	if sides == 6 {
		return v
	}
	return (v-1)%sides + 1
}

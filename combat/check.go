package combat

import "combatsim/rules"

// check is one kind of d6 test: hit or wound.
type check struct {
	context   Context
	threshold int // natural roll needed, already clamped
	crit      int // natural roll that is critical, 0 for none
	reroll    rules.Reroll
	modifier  int
}

type rollResult struct {
	value    int
	success  bool
	critical bool
}

func (c check) critical(v int) bool {
	return c.crit > 0 && v >= c.crit
}

// passes applies the threshold to a natural roll. A critical always passes
// and a natural 1 always fails.
func (c check) passes(v int) bool {
	if c.critical(v) {
		return true
	}
	return v != 1 && v >= c.threshold
}

func (c check) wantsReroll(v int) bool {
	switch c.reroll {
	case rules.RerollOnes:
		return v == 1
	case rules.RerollFailed:
		return !c.passes(v)
	case rules.RerollAll:
		return !c.critical(v)
	default:
		return false
	}
}

// roll rolls n dice for the check, then re-rolls each eligible die once, in
// die order.
func (p *pipeline) roll(c check, n int) []rollResult {
	raw := p.src.RollND6(n)
	rec := DiceRollRecord{
		Context:   c.context,
		Raw:       raw,
		Modified:  make([]int, n),
		Threshold: c.threshold,
	}
	results := make([]rollResult, n)
	for i, v := range raw {
		if c.wantsReroll(v) {
			to := p.src.RollD6()
			rec.Rerolls = append(rec.Rerolls, RerollAudit{Index: i, From: v, To: to})
			v = to
		}
		r := rollResult{value: v, success: c.passes(v), critical: c.critical(v)}
		results[i] = r
		rec.Modified[i] = v + c.modifier
		switch {
		case r.success:
			rec.Successes++
			if r.critical {
				rec.Critical++
			}
		default:
			rec.Failures++
		}
	}
	p.record(rec)
	return results
}

package authz

// Decision is the three-valued outcome of a policy rule. A before rule may
// resolve the whole check immediately; Continue defers to the ability rule.
type Decision int

const (
	Continue Decision = iota
	Allow
	Deny
)

// Evaluate runs the before rule first and falls through to the ability rule
// only on Continue. A trailing Continue resolves to a denial.
func Evaluate(before, ability func() Decision) bool {
	if d := before(); d != Continue {
		return d == Allow
	}
	return ability() == Allow
}

func allowIf(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}

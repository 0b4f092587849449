package swap

import "github.com/trade-hub/trade-hub/internal/domain/trade"

// Method represents the delivery method of a swap.
type Method string

const (
	MethodUndecided Method = "UNDECIDED"
	MethodSelf      Method = "SELF"
	MethodPlatform  Method = "PLATFORM"
)

// ValidMethod reports whether the method is one a party may select.
func ValidMethod(m Method) bool {
	return m == MethodSelf || m == MethodPlatform
}

// Plan is the delivery reconciliation state: a method plus the set of roles
// that confirmed it. Selecting a different method always clears the set down
// to the new caller, so stale consensus can never survive a method change.
type Plan struct {
	Method      Method `json:"method"`
	ConfirmedBy []Role `json:"confirmedBy"`
}

// Select applies one party's method selection.
//
// Same method: the actor joins the confirmer set (idempotently). Different
// method, or no method yet: last write wins, and the set is reset to the
// actor alone, forcing re-confirmation from the party who had agreed to the
// old method.
func (p *Plan) Select(actor Role, method Method) error {
	if !ValidMethod(method) {
		return trade.ErrInvalidOperand
	}
	if method == p.Method {
		p.add(actor)
		return nil
	}
	p.Method = method
	p.ConfirmedBy = []Role{actor}
	return nil
}

// Confirmed reports whether the role has confirmed the current method.
func (p Plan) Confirmed(role Role) bool {
	for _, r := range p.ConfirmedBy {
		if r == role {
			return true
		}
	}
	return false
}

// ConfirmedByBoth is the completion-eligibility predicate: both parties agree
// on a decided method.
func (p Plan) ConfirmedByBoth() bool {
	return p.Method != MethodUndecided && p.Confirmed(RoleRequester) && p.Confirmed(RoleOwner)
}

func (p *Plan) add(role Role) {
	if !p.Confirmed(role) {
		p.ConfirmedBy = append(p.ConfirmedBy, role)
	}
}

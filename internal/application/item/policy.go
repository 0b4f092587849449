package item

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"

	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
)

// Policy is the set of administratively configured listing rules. Every rule
// is a boolean expression over item fields; an item failing any rule is
// ineligible for new negotiations.
type Policy struct {
	rules []policyRule
}

type policyRule struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// NewPolicy parses rule expressions. Empty and "true" rules are dropped.
func NewPolicy(rules []string) (*Policy, error) {
	p := &Policy{}
	for _, raw := range rules {
		src := strings.TrimSpace(raw)
		if src == "" || strings.EqualFold(src, "true") {
			continue
		}
		expr, err := govaluate.NewEvaluableExpression(src)
		if err != nil {
			return nil, fmt.Errorf("invalid listing policy rule %q: %w", src, err)
		}
		p.rules = append(p.rules, policyRule{source: src, expr: expr})
	}
	return p, nil
}

// RuleCount returns the number of active rules.
func (p *Policy) RuleCount() int {
	return len(p.rules)
}

// Allows evaluates every rule against the item. The first rule that fails, or
// fails to evaluate to a boolean, makes the item ineligible.
func (p *Policy) Allows(it *domainItem.Item) (bool, string, error) {
	params := map[string]interface{}{
		"price":    it.PriceCents,
		"category": it.Category,
		"title":    it.Title,
		"removed":  it.Removed,
	}
	for _, rule := range p.rules {
		result, err := rule.expr.Evaluate(params)
		if err != nil {
			return false, rule.source, fmt.Errorf("listing policy rule %q: %w", rule.source, err)
		}
		ok, isBool := result.(bool)
		if !isBool {
			return false, rule.source, fmt.Errorf("listing policy rule %q did not evaluate to boolean", rule.source)
		}
		if !ok {
			return false, rule.source, nil
		}
	}
	return true, "", nil
}

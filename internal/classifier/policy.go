package classifier

import (
	"fmt"
)

// Policy bounds the items worth approving
type Policy struct {
	MinLikes       int `json:"min_likes"`
	MaxLikes       int `json:"max_likes"`
	ScrollCount    int `json:"scroll_count"`
	PromoThreshold int `json:"promo_threshold"`
}

// DefaultPolicy returns the stock bounds
func DefaultPolicy() Policy {
	return Policy{
		MinLikes:       3,
		MaxLikes:       50,
		ScrollCount:    20,
		PromoThreshold: 10,
	}
}

// Validate checks the policy invariants
func (p Policy) Validate() error {
	if p.MinLikes >= p.MaxLikes {
		return fmt.Errorf("min likes %d must be below max likes %d", p.MinLikes, p.MaxLikes)
	}
	if p.ScrollCount < 0 {
		return fmt.Errorf("scroll count %d is negative", p.ScrollCount)
	}
	if p.PromoThreshold < 0 {
		return fmt.Errorf("promo threshold %d is negative", p.PromoThreshold)
	}
	return nil
}

// DecisionKind tells whether an item is approved
type DecisionKind string

const (
	DecisionSkip    DecisionKind = "skip"
	DecisionApprove DecisionKind = "approve"
)

// SkipReason explains a skip
type SkipReason string

const (
	ReasonAlreadyActioned   SkipReason = "already actioned or unavailable"
	ReasonTooPopular        SkipReason = "too popular"
	ReasonTooFewSignals     SkipReason = "too few signals"
	ReasonLikelyPromotional SkipReason = "likely promotional"
	ReasonExtractionFailed  SkipReason = "extraction failed"
	ReasonVisited           SkipReason = "already visited this run"
)

// Decision is the outcome for one item
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Reason SkipReason   `json:"reason,omitempty"`
}

// Approve returns an approving decision
func Approve() Decision {
	return Decision{Kind: DecisionApprove}
}

// Skip returns a skipping decision with reason
func Skip(reason SkipReason) Decision {
	return Decision{Kind: DecisionSkip, Reason: reason}
}

// Approved reports whether the item should be actioned
func (d Decision) Approved() bool {
	return d.Kind == DecisionApprove
}

func (d Decision) String() string {
	if d.Approved() {
		return string(DecisionApprove)
	}
	return fmt.Sprintf("%s(%s)", d.Kind, d.Reason)
}

// Decide applies the policy. Rules are checked in order and the first match
// wins.
func Decide(like LikeSignal, promo PromoScore, p Policy) Decision {
	switch {
	case like == LikeUnavailable:
		return Skip(ReasonAlreadyActioned)
	case int(like) >= p.MaxLikes:
		return Skip(ReasonTooPopular)
	case int(like) <= p.MinLikes:
		return Skip(ReasonTooFewSignals)
	case int(promo) > p.PromoThreshold:
		return Skip(ReasonLikelyPromotional)
	default:
		return Approve()
	}
}

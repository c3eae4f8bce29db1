package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name  string
		like  LikeSignal
		promo PromoScore
		want  Decision
	}{
		{"control missing", LikeUnavailable, 0, Skip(ReasonAlreadyActioned)},
		{"control missing with spammy caption", LikeUnavailable, 100, Skip(ReasonAlreadyActioned)},
		{"at max", 50, 0, Skip(ReasonTooPopular)},
		{"above max", 1200, 50, Skip(ReasonTooPopular)},
		{"no likes yet", 0, 0, Skip(ReasonTooFewSignals)},
		{"at min", 3, 0, Skip(ReasonTooFewSignals)},
		{"just above min", 4, 0, Approve()},
		{"just below max", 49, 10, Approve()},
		{"promotional", 45, 15, Skip(ReasonLikelyPromotional)},
		{"at promo threshold", 20, 10, Approve()},
		{"above promo threshold", 20, 11, Skip(ReasonLikelyPromotional)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.like, tt.promo, policy))
		})
	}
}

func TestDecideUnavailableShortCircuits(t *testing.T) {
	// the missing-control rule wins for every policy and promo score
	policies := []Policy{
		DefaultPolicy(),
		{MinLikes: -5, MaxLikes: 0, PromoThreshold: 0},
		{MinLikes: -2, MaxLikes: -1, PromoThreshold: 1000},
	}
	for _, p := range policies {
		for promo := PromoScore(0); promo < 30; promo += 7 {
			assert.Equal(t, Skip(ReasonAlreadyActioned), Decide(LikeUnavailable, promo, p))
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{MinLikes: 5, MaxLikes: 5}.Validate())
	assert.Error(t, Policy{MinLikes: 1, MaxLikes: 5, ScrollCount: -1}.Validate())
	assert.Error(t, Policy{MinLikes: 1, MaxLikes: 5, PromoThreshold: -1}.Validate())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "approve", Approve().String())
	assert.Equal(t, "skip(too popular)", Skip(ReasonTooPopular).String())
	assert.True(t, Approve().Approved())
	assert.False(t, Skip(ReasonTooPopular).Approved())
}

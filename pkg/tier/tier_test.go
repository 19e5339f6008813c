package tier_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/tier"
)

func TestTier_Order(t *testing.T) {
	t.Parallel()

	all := tier.All()
	require.Equal(t, []tier.Tier{tier.Free, tier.Pro, tier.Business}, all)

	assert.Equal(t, 0, int(tier.Free))
	assert.Equal(t, 1, int(tier.Pro))
	assert.Equal(t, 2, int(tier.Business))

	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i >= j, a.AtLeast(b), "%s.AtLeast(%s)", a, b)
		}
	}
}

func TestTier_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Free", tier.Free.DisplayName())
	assert.Equal(t, "Pro", tier.Pro.DisplayName())
	assert.Equal(t, "Business", tier.Business.DisplayName())
	assert.Equal(t, "Unknown", tier.Tier(7).DisplayName())
	assert.Equal(t, "business", tier.Business.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    tier.Tier
		wantErr bool
	}{
		{in: "free", want: tier.Free},
		{in: "Pro", want: tier.Pro},
		{in: " BUSINESS ", want: tier.Business},
		{in: "0", want: tier.Free},
		{in: "2", want: tier.Business},
		{in: "3", wantErr: true},
		{in: "enterprise", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := tier.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, tier.ErrUnknownTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTier_TextEncoding(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		Tier tier.Tier `json:"tier"`
	}{Tier: tier.Pro})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"pro"}`, string(b))

	var decoded struct {
		Tier tier.Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"Business"}`), &decoded))
	assert.Equal(t, tier.Business, decoded.Tier)

	err = json.Unmarshal([]byte(`{"tier":"gold"}`), &decoded)
	assert.ErrorIs(t, err, tier.ErrUnknownTier)

	_, err = tier.Tier(9).MarshalText()
	assert.ErrorIs(t, err, tier.ErrUnknownTier)
}

package tier

import (
	"encoding/json"
	"strconv"
)

// sentinelUnlimited is how the billing API encodes an unbounded quota.
// It never leaves this file: everything else works with Quota.
const sentinelUnlimited int64 = -1

// Quota is either Unlimited or Bounded(n) with n >= 0.
// The zero value is Bounded(0), i.e. nothing allowed.
type Quota struct {
	unlimited bool
	max       int64
}

// Unlimited returns a quota without an upper bound.
func Unlimited() Quota {
	return Quota{unlimited: true}
}

// Bounded returns a quota allowing at most n items. Panics on negative n
// since that is a programming error in a policy table.
func Bounded(n int64) Quota {
	if n < 0 {
		panic(ErrNegativeQuota)
	}
	return Quota{max: n}
}

// QuotaFromSentinel converts the wire representation where any negative
// number means unlimited.
func QuotaFromSentinel(n int64) Quota {
	if n < 0 {
		return Unlimited()
	}
	return Quota{max: n}
}

// Sentinel returns the wire representation of q.
func (q Quota) Sentinel() int64 {
	if q.unlimited {
		return sentinelUnlimited
	}
	return q.max
}

func (q Quota) IsUnlimited() bool {
	return q.unlimited
}

// Max returns the bound and true for bounded quotas, or 0 and false for unlimited ones.
func (q Quota) Max() (int64, bool) {
	if q.unlimited {
		return 0, false
	}
	return q.max, true
}

// Allows reports whether one more item may be added when count items already exist.
func (q Quota) Allows(count int64) bool {
	if q.unlimited {
		return true
	}
	return count < q.max
}

// Covers reports whether q is at least as generous as other.
func (q Quota) Covers(other Quota) bool {
	switch {
	case q.unlimited:
		return true
	case other.unlimited:
		return false
	default:
		return q.max >= other.max
	}
}

func (q Quota) String() string {
	if q.unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(q.max, 10)
}

func (q Quota) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Sentinel())
}

func (q *Quota) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*q = QuotaFromSentinel(n)
	return nil
}

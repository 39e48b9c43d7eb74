// AngelaMos | 2026
// limit.go

package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const unlimitedToken = "unlimited"

// Limit is a monthly quota: either a finite count or unlimited. The zero
// value is a limit of 0.
type Limit struct {
	max       int
	unlimited bool
}

func Unlimited() Limit {
	return Limit{unlimited: true}
}

func Max(n int) Limit {
	if n < 0 {
		n = 0
	}
	return Limit{max: n}
}

func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value is the finite maximum. It is meaningless when IsUnlimited is true.
func (l Limit) Value() int {
	return l.max
}

// IsZero reports a finite limit of zero, i.e. no access at all.
func (l Limit) IsZero() bool {
	return !l.unlimited && l.max == 0
}

// Reached reports whether current usage leaves no room for another unit.
func (l Limit) Reached(current int) bool {
	return !l.unlimited && current >= l.max
}

// Allows reports whether n more units fit on top of current usage.
func (l Limit) Allows(current, n int) bool {
	return l.unlimited || current+n <= l.max
}

func (l Limit) String() string {
	if l.unlimited {
		return unlimitedToken
	}
	return strconv.Itoa(l.max)
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return json.Marshal(unlimitedToken)
	}
	return json.Marshal(l.max)
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unlimitedToken {
			return fmt.Errorf("limit: unexpected string %q", s)
		}
		*l = Unlimited()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	*l = Max(n)
	return nil
}

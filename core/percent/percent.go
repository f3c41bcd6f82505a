// percent implements a simple and straightforward type for percentage values
package percent

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Percent is a simple and straightforward type for percentage values.
// Values above 100% are legal; a size of 150% enlarges text.
type Percent float64

// ErrFormat is returned for strings which are not a number, optionally
// followed by a percent sign.
var ErrFormat = errors.New("format error parsing percentage")

func FromFloat(f float64) Percent {
	switch {
	case f <= 0 || math.IsNaN(f) || math.IsInf(f, -1):
		return Percent(0)
	case math.IsInf(f, 1):
		return Percent(math.MaxFloat32)
	}
	return Percent(f)
}

// FromString parses "N%" or "N". The second return value tells if a percent
// sign was present.
func FromString(s string) (Percent, bool, error) {
	s = strings.TrimSpace(s)
	isPercent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, isPercent, ErrFormat
	}
	return Percent(f), isPercent, nil
}

// Ratio returns the percentage as a factor, i.e. 50% => 0.5.
func (p Percent) Ratio() float64 {
	return float64(p) / 100
}

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64) + "%"
}

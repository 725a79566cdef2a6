package market

import "fmt"

// Interval is a candle interval in the venue's notation: minutes as a
// number, or D, W, M.
type Interval string

var validIntervals = map[Interval]bool{
	"1": true, "3": true, "5": true, "15": true, "30": true,
	"60": true, "120": true, "240": true, "360": true, "720": true,
	"D": true, "W": true, "M": true,
}

// ParseInterval validates s against the intervals the venue accepts.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if !validIntervals[iv] {
		return "", fmt.Errorf("unsupported interval %q", s)
	}
	return iv, nil
}

func (i Interval) String() string { return string(i) }

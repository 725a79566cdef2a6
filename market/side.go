package market

// Side is the direction of a position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

func (s Side) String() string { return string(s) }

// OrderSide maps the position direction to the venue's order side.
func (s Side) OrderSide() string {
	if s == Short {
		return "Sell"
	}
	return "Buy"
}

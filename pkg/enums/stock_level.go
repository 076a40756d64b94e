package enums

// StockLevel classifies how much of an ingredient or addon a machine holds
// relative to its configured capacity.
type StockLevel string

const (
	StockLevelAvailable StockLevel = "AVAILABLE"
	StockLevelLow       StockLevel = "LOW_STOCK"
	StockLevelOut       StockLevel = "OUT_OF_STOCK"
)

// String implements fmt.Stringer.
func (s StockLevel) String() string {
	return string(s)
}

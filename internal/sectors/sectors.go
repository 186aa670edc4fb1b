// Package sectors maps the tokenized-stock (xStocks) universe onto
// sector buckets and per-symbol volatility heuristics. The tables are
// static: the engines never fetch market metadata.
package sectors

// Sector buckets used by concentration analysis and stress scenarios.
const (
	Technology     = "technology"
	Semiconductors = "semiconductors"
	Consumer       = "consumer"
	Finance        = "finance"
	Healthcare     = "healthcare"
	Energy         = "energy"
	ETF            = "etf"
	Crypto         = "crypto"
	Other          = "other"
	Mixed          = "mixed"
)

// symbolSectors covers the tradable xStocks catalog. Unlisted symbols
// fall back to Other.
var symbolSectors = map[string]string{
	"AAPLx":  Technology,
	"MSFTx":  Technology,
	"GOOGLx": Technology,
	"METAx":  Technology,
	"ORCLx":  Technology,
	"CRMx":   Technology,
	"NVDAx":  Semiconductors,
	"AMDx":   Semiconductors,
	"INTCx":  Semiconductors,
	"AVGOx":  Semiconductors,
	"AMZNx":  Consumer,
	"TSLAx":  Consumer,
	"WMTx":   Consumer,
	"MCDx":   Consumer,
	"NKEx":   Consumer,
	"JPMx":   Finance,
	"GSx":    Finance,
	"Vx":     Finance,
	"BACx":   Finance,
	"JNJx":   Healthcare,
	"PFEx":   Healthcare,
	"UNHx":   Healthcare,
	"LLYx":   Healthcare,
	"XOMx":   Energy,
	"CVXx":   Energy,
	"SPYx":   ETF,
	"QQQx":   ETF,
	"COINx":  Crypto,
	"MSTRx":  Crypto,
	"HOODx":  Crypto,
}

// symbolVolatility is a rough daily-volatility heuristic in percent,
// used for per-position risk when no return series exists.
var symbolVolatility = map[string]float64{
	"AAPLx":  1.8,
	"MSFTx":  1.6,
	"GOOGLx": 1.9,
	"METAx":  2.4,
	"NVDAx":  3.2,
	"AMDx":   3.4,
	"INTCx":  2.6,
	"AVGOx":  2.8,
	"AMZNx":  2.2,
	"TSLAx":  3.8,
	"WMTx":   1.2,
	"JPMx":   1.7,
	"GSx":    1.9,
	"JNJx":   1.1,
	"PFEx":   1.5,
	"UNHx":   1.6,
	"XOMx":   1.9,
	"CVXx":   1.8,
	"SPYx":   1.0,
	"QQQx":   1.3,
	"COINx":  4.5,
	"MSTRx":  5.0,
	"HOODx":  3.6,
}

// DefaultVolatility applies to symbols missing from the heuristic table.
const DefaultVolatility = 2.5

// Lookup returns the sector bucket for a symbol, Other if unlisted.
func Lookup(symbol string) string {
	if s, ok := symbolSectors[symbol]; ok {
		return s
	}
	return Other
}

// Volatility returns the daily volatility heuristic for a symbol.
func Volatility(symbol string) float64 {
	if v, ok := symbolVolatility[symbol]; ok {
		return v
	}
	return DefaultVolatility
}

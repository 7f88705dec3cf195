package dto

import "sort"

// FixedWatchlist is the hand-curated scan set: large caps grouped by sector.
// It never expires; the dynamic screener output is merged on top of it.
var FixedWatchlist = map[string][]string{
	"Tech": {
		"AAPL", "MSFT", "NVDA", "AVGO", "ORCL", "CRM", "CSCO", "ACN", "ADBE", "AMD",
	},
	"Communication": {
		"GOOGL", "META", "NFLX", "DIS", "CMCSA", "VZ",
	},
	"Consumer": {
		"AMZN", "TSLA", "HD", "MCD", "COST", "WMT", "PG", "KO", "PEP", "NKE",
	},
	"Financial": {
		"BRK-B", "JPM", "V", "MA", "BAC", "WFC", "GS", "MS", "BLK",
	},
	"Healthcare": {
		"UNH", "JNJ", "LLY", "MRK", "ABBV", "TMO", "ABT", "PFE",
	},
	"Energy": {
		"XOM", "CVX",
	},
	"Industrial": {
		"GE", "CAT", "UNP", "RTX", "HON",
	},
}

// SP500Tickers are the major S&P 500 constituents used as screener candidates.
var SP500Tickers = []string{
	// Tech
	"AAPL", "MSFT", "NVDA", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "AVGO", "ORCL",
	"CRM", "AMD", "ADBE", "CSCO", "ACN", "IBM", "INTC", "TXN", "QCOM", "AMAT",
	"INTU", "MU", "ADI", "LRCX", "KLAC", "SNPS", "CDNS", "MCHP", "FTNT", "PANW",
	// Finance
	"JPM", "BAC", "WFC", "GS", "MS", "BLK", "C", "SCHW", "AXP", "SPGI",
	"BX", "CB", "PGR", "MMC", "ICE", "CME", "AON", "MCO", "TFC", "USB",
	// Healthcare
	"LLY", "UNH", "JNJ", "ABBV", "MRK", "TMO", "ABT", "DHR", "PFE", "BMY",
	"AMGN", "CVS", "ELV", "MDT", "GILD", "CI", "REGN", "ISRG", "VRTX", "ZTS",
	// Consumer
	"WMT", "HD", "MCD", "COST", "NKE", "SBUX", "TJX", "LOW", "TGT", "DG",
	"BKNG", "ABNB", "MAR", "CMG", "YUM", "ORLY", "AZO", "ROST", "EBAY", "ETSY",
	// Industrial
	"GE", "CAT", "HON", "UNP", "RTX", "BA", "LMT", "DE", "UPS", "MMM",
	"GD", "NOC", "FDX", "NSC", "CSX", "EMR", "ETN", "PH", "ITW", "CARR",
	// Energy
	"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "OXY", "HAL",
	// Communication / media
	"TMUS", "T", "VZ", "NFLX", "DIS", "CMCSA", "CHTR", "PARA", "WBD", "FOXA",
	// Other
	"BRK-B", "V", "MA", "PM", "PG", "KO", "PEP", "MO", "CL", "MDLZ",
}

// Nasdaq100Tickers are the major NASDAQ 100 constituents.
var Nasdaq100Tickers = []string{
	"AAPL", "MSFT", "NVDA", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "AVGO", "COST",
	"NFLX", "AMD", "PEP", "ADBE", "CSCO", "TMUS", "CMCSA", "INTC", "INTU", "TXN",
	"QCOM", "AMGN", "HON", "SBUX", "AMAT", "BKNG", "ISRG", "GILD", "ADI", "VRTX",
	"ADP", "REGN", "MDLZ", "PANW", "MU", "LRCX", "PYPL", "SNPS", "KLAC", "CDNS",
	"MELI", "CRWD", "ABNB", "MAR", "FTNT", "ORLY", "CSX", "MRVL", "DASH", "ADSK",
	"NXPI", "WDAY", "AZN", "CPRT", "MNST", "PCAR", "ROP", "PAYX", "ROST", "FAST",
	"ODFL", "AEP", "BKR", "EA", "CTSH", "XEL", "DXCM", "VRSK", "GEHC", "EXC",
	"CTAS", "CHTR", "IDXX", "KDP", "MCHP", "KHC", "CCEP", "TTWO", "FANG", "ZS",
	"DDOG", "ANSS", "TTD", "ON", "CDW", "BIIB", "GFS", "ILMN", "WBD", "MDB",
	"MRNA", "WBA", "TEAM", "ALGN", "ZM", "LCID", "RIVN",
}

// FixedWatchlistTickers flattens the sector map, deduplicated and sorted.
func FixedWatchlistTickers() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, tickers := range FixedWatchlist {
		for _, t := range tickers {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// CandidateUniverse merges the index membership lists, deduplicated and
// sorted so screener runs walk candidates in a stable order.
func CandidateUniverse() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range [][]string{SP500Tickers, Nasdaq100Tickers} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

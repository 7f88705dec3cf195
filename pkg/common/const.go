package common

const (
	KEY_STOCK_PROFILE = "stock_profile:%s"
	KEY_LAST_QUOTE    = "last_quote:%s"
	KEY_LAST_SCAN_AT  = "last_scan_at"
)

const (
	MARKET_US = "US"
)

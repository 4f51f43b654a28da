package wallet

import "time"

// Cache keys and durations
const (
	WalletCachePrefix = "wallet:user:"
	CacheDuration     = 5 * time.Minute
)

package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Pools for commonly allocated objects to reduce GC pressure

var (
	// balanceMapPool provides pooled maps for the per-commodity sums of a
	// balance group
	balanceMapPool = sync.Pool{
		New: func() any {
			return make(map[string]decimal.Decimal, 4) // typical transaction has 1-2 commodities
		},
	}
)

// getBalanceMap retrieves a pooled balance map
func getBalanceMap() map[string]decimal.Decimal {
	return balanceMapPool.Get().(map[string]decimal.Decimal)
}

// putBalanceMap clears and returns a balance map to the pool
func putBalanceMap(m map[string]decimal.Decimal) {
	if m == nil {
		return
	}
	clear(m)
	balanceMapPool.Put(m)
}

package types

import "math/big"

// Account tracks the balances held by a single address. BalanceGIG is the
// payment unit moved by escrow custody; BalanceZGIG backs oracle stake and
// reward payouts.
type Account struct {
	Nonce       uint64   `json:"nonce"`
	BalanceGIG  *big.Int `json:"balanceGIG"`
	BalanceZGIG *big.Int `json:"balanceZGIG"`
}

// Normalize replaces nil balance fields with zero values so callers can do
// arithmetic without nil checks.
func (a *Account) Normalize() *Account {
	if a == nil {
		return &Account{BalanceGIG: big.NewInt(0), BalanceZGIG: big.NewInt(0)}
	}
	if a.BalanceGIG == nil {
		a.BalanceGIG = big.NewInt(0)
	}
	if a.BalanceZGIG == nil {
		a.BalanceZGIG = big.NewInt(0)
	}
	return a
}

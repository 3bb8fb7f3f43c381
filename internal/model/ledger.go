package model

import "sync"

// MaterialLedger tracks a character's stock of crafting materials,
// keyed by material type ID. Amounts never go negative: every debit is
// a single atomic check-and-subtract under the ledger mutex, so two
// racing craft commits cannot double-spend the same stock.
type MaterialLedger struct {
	ownerID int64

	mu    sync.Mutex
	stock map[int32]int64
}

// NewMaterialLedger creates an empty ledger for a character.
func NewMaterialLedger(ownerID int64) *MaterialLedger {
	return &MaterialLedger{
		ownerID: ownerID,
		stock:   make(map[int32]int64),
	}
}

// OwnerID returns the character ID this ledger belongs to.
func (l *MaterialLedger) OwnerID() int64 {
	return l.ownerID
}

// Balance returns the current stock of a material type.
func (l *MaterialLedger) Balance(materialID int32) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[materialID]
}

// Credit adds amount units of a material type. Non-positive amounts
// are ignored (salvage computes zero refunds for cheap materials).
func (l *MaterialLedger) Credit(materialID int32, amount int64) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[materialID] += amount
}

// Debit removes amount units of a material type. Fails with a
// PreconditionError if the stock is insufficient; the balance is
// re-read under the lock, never trusted from an earlier check.
func (l *MaterialLedger) Debit(materialID int32, amount int64) error {
	if amount <= 0 {
		return Validationf("debit amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stock[materialID] < amount {
		return Preconditionf("insufficient stock of material %d: have %d, need %d",
			materialID, l.stock[materialID], amount)
	}
	l.stock[materialID] -= amount
	return nil
}

// DebitAll removes an entire requirement set in one critical section.
// The whole set is validated before any entry is touched; on any
// shortfall the ledger is left exactly as it was.
func (l *MaterialLedger) DebitAll(required map[int32]int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for materialID, amount := range required {
		if amount < 0 {
			return Validationf("debit amount must not be negative, got %d for material %d", amount, materialID)
		}
		if l.stock[materialID] < amount {
			return Preconditionf("insufficient stock of material %d: have %d, need %d",
				materialID, l.stock[materialID], amount)
		}
	}
	for materialID, amount := range required {
		l.stock[materialID] -= amount
	}
	return nil
}

// Snapshot returns a copy of all non-zero balances.
func (l *MaterialLedger) Snapshot() map[int32]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int32]int64, len(l.stock))
	for materialID, amount := range l.stock {
		if amount != 0 {
			out[materialID] = amount
		}
	}
	return out
}

// Restore replaces the ledger contents with stored balances.
// Used by the repository layer when hydrating a character.
func (l *MaterialLedger) Restore(stock map[int32]int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock = make(map[int32]int64, len(stock))
	for materialID, amount := range stock {
		if amount > 0 {
			l.stock[materialID] = amount
		}
	}
}

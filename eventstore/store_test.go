package eventstore

import (
	"fmt"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gigescrow/core/types"
	"gigescrow/native/escrow"
)

// ledgerStub satisfies the escrow engine's state contract with just enough
// behavior to drive event emission.
type ledgerStub struct {
	contracts map[string]*escrow.GigContract
	accounts  map[[20]byte]*types.Account
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{
		contracts: make(map[string]*escrow.GigContract),
		accounts:  make(map[[20]byte]*types.Account),
	}
}

func (l *ledgerStub) ContractPut(c *escrow.GigContract) error {
	l.contracts[c.ID] = c.Clone()
	return nil
}

func (l *ledgerStub) ContractGet(id string) (*escrow.GigContract, bool) {
	c, ok := l.contracts[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

func (l *ledgerStub) EscrowCredit(string, string, *big.Int) error { return nil }

func (l *ledgerStub) EscrowDebit(string, string, *big.Int) error { return nil }

func (l *ledgerStub) EscrowVaultAddress(token string) ([20]byte, error) {
	if token != "GIG" && token != "ZGIG" {
		return [20]byte{}, fmt.Errorf("unknown token %s", token)
	}
	return stubAddress(0xAA), nil
}

func (l *ledgerStub) GetAccount(addr []byte) (*types.Account, error) {
	var key [20]byte
	copy(key[:], addr)
	acc, ok := l.accounts[key]
	if !ok {
		return (&types.Account{}).Normalize(), nil
	}
	return acc.Normalize(), nil
}

func (l *ledgerStub) PutAccount(addr []byte, account *types.Account) error {
	var key [20]byte
	copy(key[:], addr)
	l.accounts[key] = account.Normalize()
	return nil
}

func stubAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func bigInt(v int64) *big.Int { return big.NewInt(v) }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndListInSequenceOrder(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(&types.Event{
		Type:       "escrow.created",
		Attributes: map[string]string{"id": "gig-1"},
	}))
	require.NoError(t, store.Append(&types.Event{
		Type:       "escrow.funded",
		Attributes: map[string]string{"id": "gig-1"},
	}))
	require.NoError(t, store.Append(&types.Event{
		Type:       "dispute.created",
		Attributes: map[string]string{"disputeId": "1"},
	}))

	all, err := store.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].Sequence)
	require.Equal(t, "escrow.created", all[0].Type)
	require.Equal(t, "gig-1", all[0].Attributes["id"])
	require.Equal(t, uint64(3), all[2].Sequence)

	escrowOnly, err := store.List("escrow.", 10)
	require.NoError(t, err)
	require.Len(t, escrowOnly, 2)

	limited, err := store.List("", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "escrow.created", limited[0].Type)
}

func TestAppendRejectsNilEvent(t *testing.T) {
	store := newTestStore(t)
	require.Error(t, store.Append(nil))
}

func TestJournalRecordsEngineEvents(t *testing.T) {
	store := newTestStore(t)
	journal := NewJournal(store, nil)

	engine := escrow.NewEngine()
	state := newLedgerStub()
	engine.SetState(state)
	engine.SetEmitter(journal)

	funder := stubAddress(0x01)
	counterparty := stubAddress(0x02)
	_, err := engine.Create("gig-1", funder, counterparty, "GIG", []escrow.MilestoneSpec{
		{Description: "all work", Amount: bigInt(100), Deadline: 4_000_000_000},
	})
	require.NoError(t, err)

	rows, err := store.List("escrow.created", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "gig-1", rows[0].Attributes["id"])
}

package state

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"gigescrow/core/types"
	"gigescrow/crypto"
	"gigescrow/native/dispute"
	"gigescrow/native/escrow"
	"gigescrow/storage"
)

const (
	prefixAccount       = "acct/"
	prefixContract      = "contract/"
	prefixEscrowBalance = "escrow-bal/"
	prefixDispute       = "dispute/"
	prefixVote          = "dispute-vote/"
	prefixVoters        = "dispute-voters/"
	prefixOracle        = "oracle/"
	keyDisputeCounter   = "counter/disputes"
	keyResolvedCounter  = "counter/resolved"
	keyTotalStaked      = "counter/total-staked"
)

// ErrEscrowUnderflow is returned when a debit exceeds the custodied balance
// tracked for a contract.
var ErrEscrowUnderflow = errors.New("state: escrow balance underflow")

// Manager persists accounts, contracts, disputes, and counters on a
// key-value store. It is the single owner of custody bookkeeping: the escrow
// and dispute engines consume it through their narrow state interfaces, so a
// test can swap in any other implementation.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) getJSON(key string, out interface{}) (bool, error) {
	raw, err := m.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putJSON(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	return m.db.Put([]byte(key), raw)
}

// --- Accounts ---

// GetAccount loads the account for an address, returning a zeroed account
// when none exists yet.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	account := &types.Account{}
	ok, err := m.getJSON(prefixAccount+hex.EncodeToString(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return (&types.Account{}).Normalize(), nil
	}
	return account.Normalize(), nil
}

// PutAccount persists the account for an address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	return m.putJSON(prefixAccount+hex.EncodeToString(addr), account.Normalize())
}

// --- Gig contracts ---

// ContractPut validates and persists a contract.
func (m *Manager) ContractPut(contract *escrow.GigContract) error {
	sanitized, err := escrow.SanitizeContract(contract)
	if err != nil {
		return err
	}
	return m.putJSON(prefixContract+sanitized.ID, sanitized)
}

// ContractGet loads a contract by identifier.
func (m *Manager) ContractGet(id string) (*escrow.GigContract, bool) {
	contract := &escrow.GigContract{}
	ok, err := m.getJSON(prefixContract+strings.TrimSpace(id), contract)
	if err != nil || !ok {
		return nil, false
	}
	return contract, true
}

func escrowBalanceKey(token, id string) string {
	return prefixEscrowBalance + token + "/" + id
}

func (m *Manager) escrowBalance(token, id string) (*big.Int, error) {
	raw, err := m.db.Get([]byte(escrowBalanceKey(token, id)))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	value, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("state: corrupt escrow balance for %s", id)
	}
	return value, nil
}

// EscrowCredit records custody received for a contract.
func (m *Manager) EscrowCredit(id string, token string, amt *big.Int) error {
	if amt == nil || amt.Sign() < 0 {
		return fmt.Errorf("state: credit amount must be non-negative")
	}
	balance, err := m.escrowBalance(token, id)
	if err != nil {
		return err
	}
	balance.Add(balance, amt)
	return m.db.Put([]byte(escrowBalanceKey(token, id)), []byte(balance.String()))
}

// EscrowDebit records custody released for a contract. The tracked balance
// can never go negative.
func (m *Manager) EscrowDebit(id string, token string, amt *big.Int) error {
	if amt == nil || amt.Sign() < 0 {
		return fmt.Errorf("state: debit amount must be non-negative")
	}
	balance, err := m.escrowBalance(token, id)
	if err != nil {
		return err
	}
	if balance.Cmp(amt) < 0 {
		return ErrEscrowUnderflow
	}
	balance.Sub(balance, amt)
	return m.db.Put([]byte(escrowBalanceKey(token, id)), []byte(balance.String()))
}

// EscrowBalance reports the custody tracked for a contract.
func (m *Manager) EscrowBalance(id string, token string) (*big.Int, error) {
	return m.escrowBalance(token, id)
}

// EscrowVaultAddress returns the deterministic vault account for a token.
func (m *Manager) EscrowVaultAddress(token string) ([20]byte, error) {
	normalized, err := escrow.NormalizeToken(token)
	if err != nil {
		return [20]byte{}, err
	}
	return crypto.DeriveVaultAddress("vault/" + normalized), nil
}

// StakeVaultAddress returns the account holding all oracle stake.
func (m *Manager) StakeVaultAddress() ([20]byte, error) {
	return crypto.DeriveVaultAddress("vault/stake"), nil
}

// --- Disputes ---

func disputeKey(id uint64) string {
	return prefixDispute + strconv.FormatUint(id, 10)
}

// DisputeNextID allocates the next dispute identifier. Identifiers start at 1
// and are never reused.
func (m *Manager) DisputeNextID() (uint64, error) {
	count, err := m.DisputeCount()
	if err != nil {
		return 0, err
	}
	next := count + 1
	if err := m.db.Put([]byte(keyDisputeCounter), []byte(strconv.FormatUint(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

// DisputeCount reports how many disputes have been allocated.
func (m *Manager) DisputeCount() (uint64, error) {
	return m.counter(keyDisputeCounter)
}

// ResolvedCount reports how many disputes reached a final outcome.
func (m *Manager) ResolvedCount() (uint64, error) {
	return m.counter(keyResolvedCounter)
}

// SetResolvedCount stores the resolved dispute counter.
func (m *Manager) SetResolvedCount(count uint64) error {
	return m.db.Put([]byte(keyResolvedCounter), []byte(strconv.FormatUint(count, 10)))
}

func (m *Manager) counter(key string) (uint64, error) {
	raw, err := m.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

// DisputePut persists a dispute record.
func (m *Manager) DisputePut(d *dispute.Dispute) error {
	if d == nil {
		return fmt.Errorf("state: nil dispute")
	}
	return m.putJSON(disputeKey(d.ID), d.Clone())
}

// DisputeGet loads a dispute by identifier.
func (m *Manager) DisputeGet(id uint64) (*dispute.Dispute, bool, error) {
	d := &dispute.Dispute{}
	ok, err := m.getJSON(disputeKey(id), d)
	if err != nil || !ok {
		return nil, false, err
	}
	return d, true, nil
}

func voteKey(id uint64, voter [20]byte) string {
	return prefixVote + strconv.FormatUint(id, 10) + "/" + hex.EncodeToString(voter[:])
}

// DisputeVotePut records a ballot and indexes the voter for listing. The
// index is written before the ballot: a dangling index entry is skipped on
// listing, whereas an unindexed ballot would be invisible to every reader
// that walks the index.
func (m *Manager) DisputeVotePut(v *dispute.Vote) error {
	if v == nil {
		return fmt.Errorf("state: nil vote")
	}
	votersKey := prefixVoters + strconv.FormatUint(v.DisputeID, 10)
	var voters []string
	if _, err := m.getJSON(votersKey, &voters); err != nil {
		return err
	}
	encoded := hex.EncodeToString(v.Voter[:])
	indexed := false
	for _, existing := range voters {
		if existing == encoded {
			indexed = true
			break
		}
	}
	if !indexed {
		voters = append(voters, encoded)
		sort.Strings(voters)
		if err := m.putJSON(votersKey, voters); err != nil {
			return err
		}
	}
	return m.putJSON(voteKey(v.DisputeID, v.Voter), v)
}

// DisputeVoteGet loads an oracle's ballot on a dispute, if any.
func (m *Manager) DisputeVoteGet(id uint64, voter [20]byte) (*dispute.Vote, bool, error) {
	v := &dispute.Vote{}
	ok, err := m.getJSON(voteKey(id, voter), v)
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

// DisputeListVotes returns every ballot recorded for a dispute in a
// deterministic order.
func (m *Manager) DisputeListVotes(id uint64) ([]*dispute.Vote, error) {
	votersKey := prefixVoters + strconv.FormatUint(id, 10)
	var voters []string
	if _, err := m.getJSON(votersKey, &voters); err != nil {
		return nil, err
	}
	votes := make([]*dispute.Vote, 0, len(voters))
	for _, encoded := range voters {
		raw, err := hex.DecodeString(encoded)
		if err != nil || len(raw) != 20 {
			return nil, fmt.Errorf("state: corrupt voter index for dispute %d", id)
		}
		var addr [20]byte
		copy(addr[:], raw)
		vote, ok, err := m.DisputeVoteGet(id, addr)
		if err != nil {
			return nil, err
		}
		if ok {
			votes = append(votes, vote)
		}
	}
	return votes, nil
}

// --- Oracles ---

func oracleKey(addr [20]byte) string {
	return prefixOracle + hex.EncodeToString(addr[:])
}

// OraclePut persists an oracle record.
func (m *Manager) OraclePut(o *dispute.Oracle) error {
	if o == nil {
		return fmt.Errorf("state: nil oracle")
	}
	return m.putJSON(oracleKey(o.Address), o.Clone())
}

// OracleGet loads an oracle record by address.
func (m *Manager) OracleGet(addr [20]byte) (*dispute.Oracle, bool, error) {
	o := &dispute.Oracle{}
	ok, err := m.getJSON(oracleKey(addr), o)
	if err != nil || !ok {
		return nil, false, err
	}
	return o, true, nil
}

// OracleDelete removes an oracle record.
func (m *Manager) OracleDelete(addr [20]byte) error {
	return m.db.Delete([]byte(oracleKey(addr)))
}

// TotalStaked reports the aggregate oracle stake.
func (m *Manager) TotalStaked() (*big.Int, error) {
	raw, err := m.db.Get([]byte(keyTotalStaked))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	value, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("state: corrupt total staked value")
	}
	return value, nil
}

// SetTotalStaked stores the aggregate oracle stake.
func (m *Manager) SetTotalStaked(total *big.Int) error {
	if total == nil || total.Sign() < 0 {
		return fmt.Errorf("state: total staked must be non-negative")
	}
	return m.db.Put([]byte(keyTotalStaked), []byte(total.String()))
}

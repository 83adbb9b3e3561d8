package dispute

import (
	"bytes"
	"errors"
	"math/big"
	"sort"
	"testing"

	"gigescrow/core/events"
	"gigescrow/core/types"
)

type mockRegistry struct {
	disputes    map[uint64]*Dispute
	votes       map[uint64]map[[20]byte]*Vote
	oracles     map[[20]byte]*Oracle
	accounts    map[[20]byte]*types.Account
	totalStaked *big.Int
	nextID      uint64
	resolved    uint64
	vault       [20]byte
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		disputes:    make(map[uint64]*Dispute),
		votes:       make(map[uint64]map[[20]byte]*Vote),
		oracles:     make(map[[20]byte]*Oracle),
		accounts:    make(map[[20]byte]*types.Account),
		totalStaked: big.NewInt(0),
		vault:       newTestAddress(0xCC),
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func (m *mockRegistry) DisputeNextID() (uint64, error) {
	m.nextID++
	return m.nextID, nil
}

func (m *mockRegistry) DisputePut(d *Dispute) error {
	m.disputes[d.ID] = d.Clone()
	return nil
}

func (m *mockRegistry) DisputeGet(id uint64) (*Dispute, bool, error) {
	d, ok := m.disputes[id]
	if !ok {
		return nil, false, nil
	}
	return d.Clone(), true, nil
}

func (m *mockRegistry) DisputeVotePut(v *Vote) error {
	byVoter, ok := m.votes[v.DisputeID]
	if !ok {
		byVoter = make(map[[20]byte]*Vote)
		m.votes[v.DisputeID] = byVoter
	}
	clone := *v
	byVoter[v.Voter] = &clone
	return nil
}

func (m *mockRegistry) DisputeVoteGet(id uint64, voter [20]byte) (*Vote, bool, error) {
	byVoter, ok := m.votes[id]
	if !ok {
		return nil, false, nil
	}
	v, ok := byVoter[voter]
	if !ok {
		return nil, false, nil
	}
	clone := *v
	return &clone, true, nil
}

func (m *mockRegistry) DisputeListVotes(id uint64) ([]*Vote, error) {
	byVoter := m.votes[id]
	out := make([]*Vote, 0, len(byVoter))
	for _, v := range byVoter {
		clone := *v
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Voter[:], out[j].Voter[:]) < 0
	})
	return out, nil
}

func (m *mockRegistry) OraclePut(o *Oracle) error {
	m.oracles[o.Address] = o.Clone()
	return nil
}

func (m *mockRegistry) OracleGet(addr [20]byte) (*Oracle, bool, error) {
	o, ok := m.oracles[addr]
	if !ok {
		return nil, false, nil
	}
	return o.Clone(), true, nil
}

func (m *mockRegistry) OracleDelete(addr [20]byte) error {
	delete(m.oracles, addr)
	return nil
}

func (m *mockRegistry) TotalStaked() (*big.Int, error) {
	return new(big.Int).Set(m.totalStaked), nil
}

func (m *mockRegistry) SetTotalStaked(total *big.Int) error {
	m.totalStaked = new(big.Int).Set(total)
	return nil
}

func (m *mockRegistry) DisputeCount() (uint64, error) { return m.nextID, nil }

func (m *mockRegistry) ResolvedCount() (uint64, error) { return m.resolved, nil }

func (m *mockRegistry) SetResolvedCount(count uint64) error {
	m.resolved = count
	return nil
}

func (m *mockRegistry) StakeVaultAddress() ([20]byte, error) { return m.vault, nil }

func (m *mockRegistry) GetAccount(addr []byte) (*types.Account, error) {
	var key [20]byte
	copy(key[:], addr)
	acc, ok := m.accounts[key]
	if !ok {
		return &types.Account{BalanceGIG: big.NewInt(0), BalanceZGIG: big.NewInt(0)}, nil
	}
	clone := &types.Account{Nonce: acc.Nonce, BalanceGIG: new(big.Int).Set(acc.BalanceGIG), BalanceZGIG: new(big.Int).Set(acc.BalanceZGIG)}
	return clone, nil
}

func (m *mockRegistry) PutAccount(addr []byte, account *types.Account) error {
	var key [20]byte
	copy(key[:], addr)
	account = account.Normalize()
	m.accounts[key] = &types.Account{Nonce: account.Nonce, BalanceGIG: new(big.Int).Set(account.BalanceGIG), BalanceZGIG: new(big.Int).Set(account.BalanceZGIG)}
	return nil
}

func (m *mockRegistry) setStakeBalance(addr [20]byte, amount int64) {
	m.accounts[addr] = &types.Account{BalanceGIG: big.NewInt(0), BalanceZGIG: big.NewInt(amount)}
}

func (m *mockRegistry) stakeBalance(addr [20]byte) *big.Int {
	acc, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(acc.BalanceZGIG)
}

const testNow int64 = 1_700_000_000

func testParams() Params {
	return Params{
		MinStake:            big.NewInt(1000),
		VotingPeriodSeconds: 3 * 86400,
		Quorum:              3,
		RewardPerVote:       big.NewInt(10),
	}
}

func newTestEngine(t *testing.T, params Params) (*Engine, *mockRegistry, *events.Capture, *int64) {
	t.Helper()
	state := newMockRegistry()
	capture := &events.Capture{}
	now := testNow
	engine := NewEngine()
	engine.SetState(state)
	engine.SetEmitter(capture)
	engine.SetParams(params)
	engine.SetNowFunc(func() int64 { return now })
	return engine, state, capture, &now
}

func registerOracle(t *testing.T, engine *Engine, state *mockRegistry, fill byte, stake int64) [20]byte {
	t.Helper()
	addr := newTestAddress(fill)
	state.setStakeBalance(addr, stake)
	if _, err := engine.RegisterOracle(addr, big.NewInt(stake)); err != nil {
		t.Fatalf("register oracle %x: %v", fill, err)
	}
	return addr
}

func openDispute(t *testing.T, engine *Engine) uint64 {
	t.Helper()
	freelancer := newTestAddress(0x02)
	client := newTestAddress(0x01)
	id, err := engine.CreateDispute("gig-1", freelancer, client, big.NewInt(250), "late delivery")
	if err != nil {
		t.Fatalf("create dispute: %v", err)
	}
	return id
}

func reviewedDispute(t *testing.T, engine *Engine) uint64 {
	t.Helper()
	id := openDispute(t, engine)
	if err := engine.SubmitEvidence(id, newTestAddress(0x01), "ipfs://invoice"); err != nil {
		t.Fatalf("submit evidence: %v", err)
	}
	return id
}

func TestRegisterOracleLocksStake(t *testing.T) {
	engine, state, capture, _ := newTestEngine(t, testParams())
	addr := registerOracle(t, engine, state, 0x10, 1500)

	if got := state.stakeBalance(addr); got.Sign() != 0 {
		t.Fatalf("expected stake locked, balance %s", got)
	}
	if got := state.stakeBalance(state.vault); got.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("expected vault 1500, got %s", got)
	}
	total, err := engine.TotalStaked()
	if err != nil {
		t.Fatalf("total staked: %v", err)
	}
	if total.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("expected total staked 1500, got %s", total)
	}
	oracle, err := engine.GetOracle(addr)
	if err != nil {
		t.Fatalf("get oracle: %v", err)
	}
	if oracle.Reputation != DefaultReputation {
		t.Fatalf("expected baseline reputation, got %d", oracle.Reputation)
	}
	if len(capture.Events) != 1 || capture.Events[0].Type != EventTypeOracleRegistered {
		t.Fatalf("expected registration event, got %+v", capture.Events)
	}
}

func TestRegisterOracleValidations(t *testing.T) {
	engine, state, _, _ := newTestEngine(t, testParams())
	addr := newTestAddress(0x10)
	state.setStakeBalance(addr, 5000)

	if _, err := engine.RegisterOracle(addr, big.NewInt(999)); !errors.Is(err, ErrStakeTooLow) {
		t.Fatalf("expected ErrStakeTooLow, got %v", err)
	}
	if _, err := engine.RegisterOracle(addr, big.NewInt(1000)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := engine.RegisterOracle(addr, big.NewInt(1000)); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	poor := newTestAddress(0x11)
	state.setStakeBalance(poor, 500)
	if _, err := engine.RegisterOracle(poor, big.NewInt(1000)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestUnregisterOracleReturnsStake(t *testing.T) {
	engine, state, _, _ := newTestEngine(t, testParams())
	addr := registerOracle(t, engine, state, 0x10, 1500)

	if err := engine.UnregisterOracle(addr); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if got := state.stakeBalance(addr); got.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("expected stake returned, got %s", got)
	}
	total, _ := engine.TotalStaked()
	if total.Sign() != 0 {
		t.Fatalf("expected zero total staked, got %s", total)
	}
	if _, err := engine.GetOracle(addr); !errors.Is(err, ErrNotOracle) {
		t.Fatalf("expected ErrNotOracle after unregister, got %v", err)
	}
	if err := engine.UnregisterOracle(addr); !errors.Is(err, ErrNotOracle) {
		t.Fatalf("expected ErrNotOracle on repeat, got %v", err)
	}
}

func TestCreateDisputeAssignsSequentialIDs(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, testParams())
	freelancer := newTestAddress(0x02)
	client := newTestAddress(0x01)

	first, err := engine.CreateDispute("gig-1", freelancer, client, big.NewInt(100), "a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := engine.CreateDispute("gig-2", freelancer, client, big.NewInt(100), "b")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}
	d, err := engine.Get(first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", d.Status)
	}
	if d.VotingDeadline != testNow+3*86400 {
		t.Fatalf("expected deadline %d, got %d", testNow+3*86400, d.VotingDeadline)
	}
}

func TestCreateDisputeValidations(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, testParams())
	freelancer := newTestAddress(0x02)
	client := newTestAddress(0x01)

	cases := []struct {
		name       string
		contractID string
		freelancer [20]byte
		client     [20]byte
		amount     *big.Int
	}{
		{"empty contract", "  ", freelancer, client, big.NewInt(100)},
		{"zero freelancer", "gig-1", [20]byte{}, client, big.NewInt(100)},
		{"zero client", "gig-1", freelancer, [20]byte{}, big.NewInt(100)},
		{"same parties", "gig-1", freelancer, freelancer, big.NewInt(100)},
		{"nil amount", "gig-1", freelancer, client, nil},
		{"zero amount", "gig-1", freelancer, client, big.NewInt(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.CreateDispute(tc.contractID, tc.freelancer, tc.client, tc.amount, "d"); err == nil {
				t.Fatalf("expected create to fail")
			}
		})
	}
}

func TestSubmitEvidencePromotesToUnderReview(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, testParams())
	id := openDispute(t, engine)

	stranger := newTestAddress(0x99)
	if err := engine.SubmitEvidence(id, stranger, "ipfs://x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.SubmitEvidence(id, newTestAddress(0x01), "  "); err == nil {
		t.Fatalf("expected empty reference to fail")
	}
	if err := engine.SubmitEvidence(id, newTestAddress(0x01), "ipfs://invoice"); err != nil {
		t.Fatalf("client evidence: %v", err)
	}
	if err := engine.SubmitEvidence(id, newTestAddress(0x02), "ipfs://delivery-log"); err != nil {
		t.Fatalf("freelancer evidence: %v", err)
	}
	d, err := engine.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Status != StatusUnderReview {
		t.Fatalf("expected under review, got %s", d.Status)
	}
	if len(d.ClientEvidence) != 1 || len(d.FreelancerEvidence) != 1 {
		t.Fatalf("expected evidence recorded per party, got %d/%d", len(d.ClientEvidence), len(d.FreelancerEvidence))
	}
}

func TestCastVoteRequiresUnderReview(t *testing.T) {
	engine, state, _, _ := newTestEngine(t, testParams())
	oracle := registerOracle(t, engine, state, 0x10, 1500)
	id := openDispute(t, engine)

	if err := engine.CastVote(id, oracle, OutcomeFreelancerWins); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending dispute, got %v", err)
	}
}

func TestCastVoteValidations(t *testing.T) {
	engine, state, _, now := newTestEngine(t, testParams())
	oracle := registerOracle(t, engine, state, 0x10, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, newTestAddress(0x99), OutcomeFreelancerWins); !errors.Is(err, ErrNotOracle) {
		t.Fatalf("expected ErrNotOracle, got %v", err)
	}
	if err := engine.CastVote(id, oracle, OutcomeSplit); err == nil {
		t.Fatalf("split is not a votable choice")
	}
	if err := engine.CastVote(id, oracle, OutcomeFreelancerWins); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := engine.CastVote(id, oracle, OutcomeClientWins); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	second := registerOracle(t, engine, state, 0x11, 1500)
	*now = testNow + 3*86400
	if err := engine.CastVote(id, second, OutcomeClientWins); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed at deadline, got %v", err)
	}
}

func TestQuorumResolvesOnFinalVote(t *testing.T) {
	params := testParams()
	params.Quorum = 2
	engine, state, capture, _ := newTestEngine(t, params)
	first := registerOracle(t, engine, state, 0x10, 1500)
	second := registerOracle(t, engine, state, 0x11, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, first, OutcomeFreelancerWins); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	d, _ := engine.Get(id)
	if d.Status != StatusUnderReview {
		t.Fatalf("one vote below quorum must not resolve, got %s", d.Status)
	}
	if err := engine.CastVote(id, second, OutcomeFreelancerWins); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	d, _ = engine.Get(id)
	if d.Status != StatusResolved {
		t.Fatalf("quorum vote must resolve, got %s", d.Status)
	}
	if d.Outcome != OutcomeFreelancerWins {
		t.Fatalf("expected freelancer outcome, got %s", d.Outcome)
	}
	if d.ResolvedAt != testNow {
		t.Fatalf("expected resolution timestamp, got %d", d.ResolvedAt)
	}
	resolved, _ := engine.ResolvedDisputes()
	if resolved != 1 {
		t.Fatalf("expected resolved counter 1, got %d", resolved)
	}
	last := capture.Events[len(capture.Events)-1]
	if last.Type != EventTypeDisputeResolved {
		t.Fatalf("expected resolved event last, got %s", last.Type)
	}
	third := registerOracle(t, engine, state, 0x12, 1500)
	if err := engine.CastVote(id, third, OutcomeClientWins); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resolved dispute must not accept votes, got %v", err)
	}
}

func TestTieResolvesToSplit(t *testing.T) {
	params := testParams()
	params.Quorum = 2
	engine, state, _, _ := newTestEngine(t, params)
	first := registerOracle(t, engine, state, 0x10, 1500)
	second := registerOracle(t, engine, state, 0x11, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, first, OutcomeFreelancerWins); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := engine.CastVote(id, second, OutcomeClientWins); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	d, _ := engine.Get(id)
	if d.Outcome != OutcomeSplit {
		t.Fatalf("expected split on tie, got %s", d.Outcome)
	}
}

func TestManualResolveBelowQuorumEscalates(t *testing.T) {
	engine, state, _, now := newTestEngine(t, testParams())
	oracle := registerOracle(t, engine, state, 0x10, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, oracle, OutcomeFreelancerWins); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := engine.ManualResolve(id); err == nil {
		t.Fatalf("manual resolve before deadline must fail")
	}
	*now = testNow + 3*86400 + 1
	if err := engine.ManualResolve(id); err != nil {
		t.Fatalf("manual resolve: %v", err)
	}
	d, _ := engine.Get(id)
	if d.Status != StatusResolved {
		t.Fatalf("expected resolved, got %s", d.Status)
	}
	if d.Outcome != OutcomeEscalated {
		t.Fatalf("below-quorum deadline must escalate, got %s", d.Outcome)
	}
	if err := engine.ManualResolve(id); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat, got %v", err)
	}
}

func TestManualResolveAtQuorumUsesTallies(t *testing.T) {
	params := testParams()
	params.Quorum = 2
	engine, state, _, now := newTestEngine(t, params)
	first := registerOracle(t, engine, state, 0x10, 1500)
	second := registerOracle(t, engine, state, 0x11, 1500)
	id := reviewedDispute(t, engine)

	// Raise quorum after the first ballot so the dispute stays open past
	// the deadline with tallies on record.
	if err := engine.CastVote(id, first, OutcomeClientWins); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	params.Quorum = 3
	engine.SetParams(params)
	if err := engine.CastVote(id, second, OutcomeClientWins); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	*now = testNow + 3*86400
	params.Quorum = 2
	engine.SetParams(params)
	if err := engine.ManualResolve(id); err != nil {
		t.Fatalf("manual resolve: %v", err)
	}
	d, _ := engine.Get(id)
	if d.Outcome != OutcomeClientWins {
		t.Fatalf("expected client outcome from tallies, got %s", d.Outcome)
	}
}

func TestRewardsAccrueAndClaim(t *testing.T) {
	params := testParams()
	params.Quorum = 2
	engine, state, _, _ := newTestEngine(t, params)
	treasury := newTestAddress(0xEE)
	engine.SetRewardTreasury(treasury)
	state.setStakeBalance(treasury, 1000)

	first := registerOracle(t, engine, state, 0x10, 1500)
	second := registerOracle(t, engine, state, 0x11, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, first, OutcomeFreelancerWins); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := engine.CastVote(id, second, OutcomeFreelancerWins); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	oracle, err := engine.GetOracle(first)
	if err != nil {
		t.Fatalf("get oracle: %v", err)
	}
	if oracle.PendingRewards.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected pending reward 10, got %s", oracle.PendingRewards)
	}
	if oracle.VotesCast != 1 {
		t.Fatalf("expected one vote cast, got %d", oracle.VotesCast)
	}
	if err := engine.UnregisterOracle(first); !errors.Is(err, ErrUnclaimedRewards) {
		t.Fatalf("expected ErrUnclaimedRewards, got %v", err)
	}
	claimed, err := engine.ClaimRewards(first)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected claim 10, got %s", claimed)
	}
	if got := state.stakeBalance(first); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected reward paid out, balance %s", got)
	}
	if got := state.stakeBalance(treasury); got.Cmp(big.NewInt(990)) != 0 {
		t.Fatalf("expected treasury debited, balance %s", got)
	}
	if _, err := engine.ClaimRewards(first); !errors.Is(err, ErrNoRewards) {
		t.Fatalf("expected ErrNoRewards on repeat claim, got %v", err)
	}
	if err := engine.UnregisterOracle(first); err != nil {
		t.Fatalf("unregister after claim: %v", err)
	}
}

func TestClaimFailsWhenTreasuryUnderfunded(t *testing.T) {
	params := testParams()
	params.Quorum = 1
	engine, state, _, _ := newTestEngine(t, params)
	treasury := newTestAddress(0xEE)
	engine.SetRewardTreasury(treasury)
	state.setStakeBalance(treasury, 5)

	oracle := registerOracle(t, engine, state, 0x10, 1500)
	id := reviewedDispute(t, engine)
	if err := engine.CastVote(id, oracle, OutcomeFreelancerWins); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := engine.ClaimRewards(oracle); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	reloaded, err := engine.GetOracle(oracle)
	if err != nil {
		t.Fatalf("get oracle: %v", err)
	}
	if reloaded.PendingRewards.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("failed claim must keep rewards pending, got %s", reloaded.PendingRewards)
	}
}

func TestEscalationAccruesNoRewards(t *testing.T) {
	engine, state, _, now := newTestEngine(t, testParams())
	oracle := registerOracle(t, engine, state, 0x10, 1500)
	id := reviewedDispute(t, engine)

	if err := engine.CastVote(id, oracle, OutcomeFreelancerWins); err != nil {
		t.Fatalf("vote: %v", err)
	}
	*now = testNow + 3*86400
	if err := engine.ManualResolve(id); err != nil {
		t.Fatalf("manual resolve: %v", err)
	}
	reloaded, err := engine.GetOracle(oracle)
	if err != nil {
		t.Fatalf("get oracle: %v", err)
	}
	if reloaded.PendingRewards.Sign() != 0 {
		t.Fatalf("escalation must not accrue rewards, got %s", reloaded.PendingRewards)
	}
}

func TestCancelRestrictedToAuthority(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, testParams())
	authority := newTestAddress(0xAD)
	engine.SetAuthority(authority)
	id := openDispute(t, engine)

	if err := engine.Cancel(id, newTestAddress(0x01)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for party, got %v", err)
	}
	if err := engine.Cancel(id, authority); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	d, _ := engine.Get(id)
	if d.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", d.Status)
	}
	if err := engine.SubmitEvidence(id, newTestAddress(0x01), "ipfs://late"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelled dispute must not accept evidence, got %v", err)
	}
}

func TestTotalsTrackDisputeLifecycle(t *testing.T) {
	params := testParams()
	params.Quorum = 1
	engine, state, _, _ := newTestEngine(t, params)
	oracle := registerOracle(t, engine, state, 0x10, 1500)

	first := reviewedDispute(t, engine)
	if _, err := engine.CreateDispute("gig-2", newTestAddress(0x02), newTestAddress(0x01), big.NewInt(50), "x"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := engine.CastVote(first, oracle, OutcomeClientWins); err != nil {
		t.Fatalf("vote: %v", err)
	}
	total, _ := engine.TotalDisputes()
	resolved, _ := engine.ResolvedDisputes()
	if total != 2 || resolved != 1 {
		t.Fatalf("expected totals 2/1, got %d/%d", total, resolved)
	}
}

func TestGetUnknownDispute(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, testParams())
	if _, err := engine.Get(42); !errors.Is(err, ErrDisputeNotFound) {
		t.Fatalf("expected ErrDisputeNotFound, got %v", err)
	}
}

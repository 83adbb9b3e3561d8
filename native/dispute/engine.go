package dispute

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gigescrow/core/events"
	"gigescrow/core/types"
)

var (
	errNilState = errors.New("dispute engine: state not configured")

	// ErrDisputeNotFound is returned when the dispute id resolves to nothing.
	ErrDisputeNotFound = errors.New("dispute: not found")
	// ErrNotOracle rejects oracle operations from unregistered addresses.
	ErrNotOracle = errors.New("dispute: caller is not a registered oracle")
	// ErrAlreadyRegistered rejects duplicate oracle registrations.
	ErrAlreadyRegistered = errors.New("dispute: oracle already registered")
	// ErrAlreadyVoted rejects a second ballot from the same oracle; votes are
	// immutable once cast.
	ErrAlreadyVoted = errors.New("dispute: oracle already voted")
	// ErrStakeTooLow rejects registrations below the configured minimum.
	ErrStakeTooLow = errors.New("dispute: stake below minimum")
	// ErrVotingClosed rejects ballots at or after the voting deadline. The
	// deadline check is authoritative over submission order.
	ErrVotingClosed = errors.New("dispute: voting deadline passed")
	// ErrInvalidTransition rejects operations attempted outside the states
	// the dispute machine enumerates.
	ErrInvalidTransition = errors.New("dispute: invalid state transition")
	// ErrUnauthorized rejects callers that are neither party to the dispute
	// nor the configured authority.
	ErrUnauthorized = errors.New("dispute: unauthorized caller")
	// ErrInsufficientBalance rejects stake or reward transfers the source
	// account cannot cover.
	ErrInsufficientBalance = errors.New("dispute: insufficient balance")
	// ErrNoRewards rejects claims from oracles with nothing accrued.
	ErrNoRewards = errors.New("dispute: no rewards accrued")
	// ErrUnclaimedRewards blocks deregistration while rewards are pending so
	// accrued value is never silently dropped.
	ErrUnclaimedRewards = errors.New("dispute: unclaimed rewards outstanding")
)

type registryState interface {
	DisputeNextID() (uint64, error)
	DisputePut(*Dispute) error
	DisputeGet(id uint64) (*Dispute, bool, error)
	DisputeVotePut(*Vote) error
	DisputeVoteGet(id uint64, voter [20]byte) (*Vote, bool, error)
	DisputeListVotes(id uint64) ([]*Vote, error)
	OraclePut(*Oracle) error
	OracleGet(addr [20]byte) (*Oracle, bool, error)
	OracleDelete(addr [20]byte) error
	TotalStaked() (*big.Int, error)
	SetTotalStaked(*big.Int) error
	DisputeCount() (uint64, error)
	ResolvedCount() (uint64, error)
	SetResolvedCount(uint64) error
	StakeVaultAddress() ([20]byte, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type disputeEvent struct {
	evt *types.Event
}

func (e disputeEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e disputeEvent) Event() *types.Event { return e.evt }

// Engine orchestrates oracle admission, evidence collection, vote tallying,
// and resolution. It records outcomes only; settlement against the escrow
// ledger is an explicit follow-up message consumed by the referenced
// contract.
type Engine struct {
	state          registryState
	emitter        events.Emitter
	nowFn          func() int64
	params         Params
	authority      [20]byte
	rewardTreasury [20]byte
}

// NewEngine constructs a dispute engine with default no-op dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		params: Params{
			MinStake:      big.NewInt(0),
			RewardPerVote: big.NewInt(0),
		},
	}
}

// SetState wires the engine to the state backend providing persistence
// helpers.
func (e *Engine) SetState(state registryState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp disputes. Nil restores
// the default clock.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetParams updates the runtime parameters. Already-open disputes keep the
// deadline computed when they were created.
func (e *Engine) SetParams(params Params) {
	if e == nil {
		return
	}
	e.params = params.Clone()
}

// Params returns the currently configured parameters.
func (e *Engine) Params() Params {
	if e == nil {
		return Params{MinStake: big.NewInt(0), RewardPerVote: big.NewInt(0)}
	}
	return e.params.Clone()
}

// SetAuthority configures the address allowed to cancel disputes
// administratively.
func (e *Engine) SetAuthority(addr [20]byte) { e.authority = addr }

// SetRewardTreasury configures the account that funds oracle reward claims.
func (e *Engine) SetRewardTreasury(addr [20]byte) { e.rewardTreasury = addr }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(disputeEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) loadDispute(id uint64) (*Dispute, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	d, ok, err := e.state.DisputeGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDisputeNotFound
	}
	return d, nil
}

// transferStake moves ZGIG between two accounts. Stake and reward value only
// ever moves through this helper.
func (e *Engine) transferStake(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("dispute: negative transfer amount")
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc = fromAcc.Normalize()
	toAcc = toAcc.Normalize()
	if fromAcc.BalanceZGIG.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	fromAcc.BalanceZGIG = new(big.Int).Sub(fromAcc.BalanceZGIG, amount)
	toAcc.BalanceZGIG = new(big.Int).Add(toAcc.BalanceZGIG, amount)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to[:], toAcc)
}

// RegisterOracle admits a new oracle after locking its stake in the stake
// vault. Reputation starts at the neutral baseline.
func (e *Engine) RegisterOracle(addr [20]byte, stake *big.Int) (*Oracle, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if stake == nil || stake.Sign() <= 0 {
		return nil, fmt.Errorf("%w: stake must be positive", ErrStakeTooLow)
	}
	if e.params.MinStake != nil && stake.Cmp(e.params.MinStake) < 0 {
		return nil, ErrStakeTooLow
	}
	if _, ok, err := e.state.OracleGet(addr); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyRegistered
	}
	vault, err := e.state.StakeVaultAddress()
	if err != nil {
		return nil, err
	}
	if err := e.transferStake(addr, vault, stake); err != nil {
		return nil, err
	}
	oracle := &Oracle{
		Address:        addr,
		Stake:          new(big.Int).Set(stake),
		Reputation:     DefaultReputation,
		PendingRewards: big.NewInt(0),
		RegisteredAt:   e.now(),
	}
	if err := e.state.OraclePut(oracle); err != nil {
		return nil, err
	}
	total, err := e.state.TotalStaked()
	if err != nil {
		return nil, err
	}
	if err := e.state.SetTotalStaked(new(big.Int).Add(total, stake)); err != nil {
		return nil, err
	}
	e.emit(NewOracleRegisteredEvent(oracle))
	return oracle.Clone(), nil
}

// UnregisterOracle returns the full stake and removes the oracle. Accrued
// rewards must be claimed first so value is never dropped.
func (e *Engine) UnregisterOracle(addr [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	oracle, ok, err := e.state.OracleGet(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotOracle
	}
	if oracle.PendingRewards != nil && oracle.PendingRewards.Sign() > 0 {
		return ErrUnclaimedRewards
	}
	vault, err := e.state.StakeVaultAddress()
	if err != nil {
		return err
	}
	if err := e.transferStake(vault, addr, oracle.Stake); err != nil {
		return err
	}
	if err := e.state.OracleDelete(addr); err != nil {
		return err
	}
	total, err := e.state.TotalStaked()
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(total, oracle.Stake)
	if remaining.Sign() < 0 {
		remaining = big.NewInt(0)
	}
	if err := e.state.SetTotalStaked(remaining); err != nil {
		return err
	}
	e.emit(NewOracleUnregisteredEvent(oracle))
	return nil
}

// CreateDispute opens a dispute from an escrow snapshot. The voting deadline
// is fixed at creation using the currently configured period.
func (e *Engine) CreateDispute(contractID string, freelancer, client [20]byte, amount *big.Int, description string) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if strings.TrimSpace(contractID) == "" {
		return 0, fmt.Errorf("dispute: contract id must not be empty")
	}
	if freelancer == ([20]byte{}) || client == ([20]byte{}) {
		return 0, fmt.Errorf("dispute: party addresses must not be empty")
	}
	if freelancer == client {
		return 0, fmt.Errorf("dispute: parties must differ")
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, fmt.Errorf("dispute: amount must be positive")
	}
	id, err := e.state.DisputeNextID()
	if err != nil {
		return 0, err
	}
	now := e.now()
	d := &Dispute{
		ID:             id,
		ContractID:     strings.TrimSpace(contractID),
		Client:         client,
		Freelancer:     freelancer,
		Amount:         new(big.Int).Set(amount),
		Description:    strings.TrimSpace(description),
		Status:         StatusPending,
		Outcome:        OutcomeNone,
		CreatedAt:      now,
		VotingDeadline: now + int64(e.params.VotingPeriodSeconds),
	}
	if err := e.state.DisputePut(d); err != nil {
		return 0, err
	}
	e.emit(NewDisputeCreatedEvent(d))
	return id, nil
}

// SubmitEvidence appends an opaque content reference to the calling party's
// evidence list. The first submission promotes the dispute to under review;
// ordering between racing submissions is decided by whichever lands first.
func (e *Engine) SubmitEvidence(id uint64, caller [20]byte, reference string) error {
	d, err := e.loadDispute(id)
	if err != nil {
		return err
	}
	if d.Status != StatusPending && d.Status != StatusUnderReview {
		return fmt.Errorf("%w: cannot submit evidence in status %s", ErrInvalidTransition, d.Status)
	}
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return fmt.Errorf("dispute: evidence reference must not be empty")
	}
	switch caller {
	case d.Client:
		d.ClientEvidence = append(d.ClientEvidence, trimmed)
	case d.Freelancer:
		d.FreelancerEvidence = append(d.FreelancerEvidence, trimmed)
	default:
		return fmt.Errorf("%w: only a dispute party may submit evidence", ErrUnauthorized)
	}
	if d.Status == StatusPending {
		d.Status = StatusUnderReview
	}
	if err := e.state.DisputePut(d); err != nil {
		return err
	}
	e.emit(NewEvidenceEvent(d, caller, trimmed))
	return nil
}

// CastVote records a registered oracle's immutable binary ballot. Reaching
// quorum on this vote resolves the dispute immediately.
func (e *Engine) CastVote(id uint64, voter [20]byte, choice Outcome) error {
	d, err := e.loadDispute(id)
	if err != nil {
		return err
	}
	oracle, ok, err := e.state.OracleGet(voter)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotOracle
	}
	if d.Status != StatusUnderReview {
		return fmt.Errorf("%w: cannot vote in status %s", ErrInvalidTransition, d.Status)
	}
	if e.now() >= d.VotingDeadline {
		return ErrVotingClosed
	}
	if !choice.Votable() {
		return fmt.Errorf("dispute: invalid vote choice %q", choice)
	}
	if _, voted, err := e.state.DisputeVoteGet(id, voter); err != nil {
		return err
	} else if voted {
		return ErrAlreadyVoted
	}
	vote := &Vote{
		DisputeID: id,
		Voter:     voter,
		Choice:    choice,
		Timestamp: e.now(),
	}
	if err := e.state.DisputeVotePut(vote); err != nil {
		return err
	}
	switch choice {
	case OutcomeFreelancerWins:
		d.FreelancerVotes++
	case OutcomeClientWins:
		d.ClientVotes++
	}
	oracle.VotesCast++
	if err := e.state.OraclePut(oracle); err != nil {
		return err
	}
	e.emit(NewVoteEvent(vote))
	if e.params.Quorum > 0 && d.VotesCast() >= e.params.Quorum {
		return e.resolve(d)
	}
	return e.state.DisputePut(d)
}

// resolve derives the outcome from the tallies: majority wins, an exact tie
// yields a split. Participating oracles accrue the configured flat reward.
func (e *Engine) resolve(d *Dispute) error {
	switch {
	case d.FreelancerVotes > d.ClientVotes:
		d.Outcome = OutcomeFreelancerWins
	case d.ClientVotes > d.FreelancerVotes:
		d.Outcome = OutcomeClientWins
	default:
		d.Outcome = OutcomeSplit
	}
	d.Status = StatusResolved
	d.ResolvedAt = e.now()
	if err := e.state.DisputePut(d); err != nil {
		return err
	}
	resolved, err := e.state.ResolvedCount()
	if err != nil {
		return err
	}
	if err := e.state.SetResolvedCount(resolved + 1); err != nil {
		return err
	}
	if err := e.accrueRewards(d); err != nil {
		return err
	}
	e.emit(NewDisputeResolvedEvent(d))
	return nil
}

func (e *Engine) accrueRewards(d *Dispute) error {
	reward := e.params.RewardPerVote
	if reward == nil || reward.Sign() <= 0 {
		return nil
	}
	votes, err := e.state.DisputeListVotes(d.ID)
	if err != nil {
		return err
	}
	for _, vote := range votes {
		if vote == nil {
			continue
		}
		oracle, ok, err := e.state.OracleGet(vote.Voter)
		if err != nil {
			return err
		}
		if !ok {
			// Voter deregistered between ballot and resolution; nothing to
			// credit.
			continue
		}
		oracle = oracle.Clone()
		oracle.PendingRewards = new(big.Int).Add(oracle.PendingRewards, reward)
		if err := e.state.OraclePut(oracle); err != nil {
			return err
		}
	}
	return nil
}

// ManualResolve closes a dispute whose voting deadline has elapsed. Anyone
// may call it. If quorum was reached the tallies decide as usual; otherwise
// the dispute escalates for external arbitration, never defaulting to either
// party.
func (e *Engine) ManualResolve(id uint64) error {
	d, err := e.loadDispute(id)
	if err != nil {
		return err
	}
	if d.Status != StatusUnderReview {
		return fmt.Errorf("%w: cannot manually resolve in status %s", ErrInvalidTransition, d.Status)
	}
	if e.now() < d.VotingDeadline {
		return fmt.Errorf("dispute: voting still in progress")
	}
	if e.params.Quorum > 0 && d.VotesCast() >= e.params.Quorum {
		return e.resolve(d)
	}
	d.Outcome = OutcomeEscalated
	d.Status = StatusResolved
	d.ResolvedAt = e.now()
	if err := e.state.DisputePut(d); err != nil {
		return err
	}
	resolved, err := e.state.ResolvedCount()
	if err != nil {
		return err
	}
	if err := e.state.SetResolvedCount(resolved + 1); err != nil {
		return err
	}
	e.emit(NewDisputeResolvedEvent(d))
	return nil
}

// Cancel closes a dispute administratively before resolution. Restricted to
// the configured authority.
func (e *Engine) Cancel(id uint64, caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.authority == ([20]byte{}) || caller != e.authority {
		return fmt.Errorf("%w: only the authority may cancel", ErrUnauthorized)
	}
	d, err := e.loadDispute(id)
	if err != nil {
		return err
	}
	if d.Status != StatusPending && d.Status != StatusUnderReview {
		return fmt.Errorf("%w: cannot cancel in status %s", ErrInvalidTransition, d.Status)
	}
	d.Status = StatusCancelled
	if err := e.state.DisputePut(d); err != nil {
		return err
	}
	e.emit(NewDisputeCancelledEvent(d))
	return nil
}

// ClaimRewards pays out the caller's accrued rewards from the reward
// treasury. The claim fails loudly when the treasury cannot cover it.
func (e *Engine) ClaimRewards(addr [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	oracle, ok, err := e.state.OracleGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotOracle
	}
	if oracle.PendingRewards == nil || oracle.PendingRewards.Sign() == 0 {
		return nil, ErrNoRewards
	}
	if e.rewardTreasury == ([20]byte{}) {
		return nil, errors.New("dispute engine: reward treasury not configured")
	}
	amount := new(big.Int).Set(oracle.PendingRewards)
	if err := e.transferStake(e.rewardTreasury, addr, amount); err != nil {
		return nil, err
	}
	oracle = oracle.Clone()
	oracle.PendingRewards = big.NewInt(0)
	if err := e.state.OraclePut(oracle); err != nil {
		return nil, err
	}
	e.emit(NewRewardsClaimedEvent(oracle, amount))
	return amount, nil
}

// Get returns a defensive copy of the stored dispute.
func (e *Engine) Get(id uint64) (*Dispute, error) {
	d, err := e.loadDispute(id)
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// GetOracle returns a defensive copy of the oracle record.
func (e *Engine) GetOracle(addr [20]byte) (*Oracle, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	oracle, ok, err := e.state.OracleGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotOracle
	}
	return oracle.Clone(), nil
}

// TotalStaked reports the aggregate stake held in the vault.
func (e *Engine) TotalStaked() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.TotalStaked()
}

// TotalDisputes reports how many disputes have ever been opened.
func (e *Engine) TotalDisputes() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.DisputeCount()
}

// ResolvedDisputes reports how many disputes reached a final outcome.
func (e *Engine) ResolvedDisputes() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.ResolvedCount()
}

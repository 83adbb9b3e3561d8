package escrow

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
	errNilState = errors.New("escrow engine: state not configured")

	// ErrContractNotFound is returned when the contract id resolves to nothing.
	ErrContractNotFound = errors.New("escrow: contract not found")
	// ErrContractExists rejects creation under an identifier already in use.
	ErrContractExists = errors.New("escrow: contract id already exists")
	// ErrUnauthorized rejects callers that are not the party the operation
	// belongs to.
	ErrUnauthorized = errors.New("escrow: unauthorized caller")
	// ErrInvalidTransition rejects operations attempted outside the states
	// enumerated by the contract and milestone machines.
	ErrInvalidTransition = errors.New("escrow: invalid state transition")
	// ErrInsufficientBalance rejects transfers the payer cannot cover.
	ErrInsufficientBalance = errors.New("escrow: insufficient balance")
	// ErrMilestoneIndex rejects milestone indexes outside the contract.
	ErrMilestoneIndex = errors.New("escrow: milestone index out of range")
)

type engineState interface {
	ContractPut(*GigContract) error
	ContractGet(id string) (*GigContract, bool)
	EscrowCredit(id string, token string, amt *big.Int) error
	EscrowDebit(id string, token string, amt *big.Int) error
	EscrowVaultAddress(token string) ([20]byte, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// DisputeSnapshot carries the contract details handed to the dispute registry
// when a party escalates. The registry stores the copy; it never holds a live
// reference back into the ledger.
type DisputeSnapshot struct {
	ContractID   string
	Funder       [20]byte
	Counterparty [20]byte
	Amount       *big.Int
	Description  string
}

// Engine wires the gig contract business logic with external state and event
// emitters. Custody never moves except through the vault transfer helpers,
// and only inside ApproveMilestone, Cancel, and ApplyResolution.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates an escrow engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func (e *Engine) loadContract(id string) (*GigContract, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	contract, ok := e.state.ContractGet(strings.TrimSpace(id))
	if !ok {
		return nil, ErrContractNotFound
	}
	return contract, nil
}

func (e *Engine) storeContract(contract *GigContract) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.ContractPut(contract)
}

// transferToken moves value between two accounts. This is the custody
// adapter boundary: transferIn is payer to vault, transferOut is vault to
// payee, and no other code path mutates balances.
func (e *Engine) transferToken(from, to [20]byte, token string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("escrow: negative transfer amount")
	}
	normalized, err := NormalizeToken(token)
	if err != nil {
		return err
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
	switch normalized {
	case "GIG":
		if fromAcc.BalanceGIG.Cmp(amt) < 0 {
			return ErrInsufficientBalance
		}
		fromAcc.BalanceGIG = new(big.Int).Sub(fromAcc.BalanceGIG, amt)
		toAcc.BalanceGIG = new(big.Int).Add(toAcc.BalanceGIG, amt)
	case "ZGIG":
		if fromAcc.BalanceZGIG.Cmp(amt) < 0 {
			return ErrInsufficientBalance
		}
		fromAcc.BalanceZGIG = new(big.Int).Sub(fromAcc.BalanceZGIG, amt)
		toAcc.BalanceZGIG = new(big.Int).Add(toAcc.BalanceZGIG, amt)
	default:
		return fmt.Errorf("escrow: unsupported token %s", token)
	}
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(to[:], toAcc); err != nil {
		return err
	}
	return nil
}

// Create initialises and persists a new gig contract. The caller becomes the
// funder. The milestone list is fixed for the lifetime of the contract and
// the total amount is the sum of the milestone amounts.
func (e *Engine) Create(id string, funder, counterparty [20]byte, token string, milestones []MilestoneSpec) (*GigContract, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return nil, fmt.Errorf("escrow: contract id must not be empty")
	}
	if funder == ([20]byte{}) || counterparty == ([20]byte{}) {
		return nil, fmt.Errorf("escrow: party addresses must not be empty")
	}
	if funder == counterparty {
		return nil, fmt.Errorf("escrow: funder and counterparty must differ")
	}
	normalizedToken, err := NormalizeToken(token)
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return nil, fmt.Errorf("%w: at least one milestone required", ErrInvalidMilestone)
	}
	if _, ok := e.state.ContractGet(trimmedID); ok {
		return nil, ErrContractExists
	}
	now := e.now()
	total := big.NewInt(0)
	legs := make([]*Milestone, len(milestones))
	for i, spec := range milestones {
		if spec.Amount == nil || spec.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: milestone %d amount must be positive", ErrInvalidMilestone, i)
		}
		if spec.Deadline <= now {
			return nil, fmt.Errorf("%w: milestone %d deadline must be in the future", ErrInvalidMilestone, i)
		}
		if strings.TrimSpace(spec.Description) == "" {
			return nil, fmt.Errorf("%w: milestone %d description required", ErrInvalidMilestone, i)
		}
		total.Add(total, spec.Amount)
		legs[i] = &Milestone{
			Description: strings.TrimSpace(spec.Description),
			Amount:      new(big.Int).Set(spec.Amount),
			Deadline:    spec.Deadline,
			Status:      MilestonePending,
		}
	}
	contract := &GigContract{
		ID:             trimmedID,
		Funder:         funder,
		Counterparty:   counterparty,
		Token:          normalizedToken,
		TotalAmount:    total,
		ReleasedAmount: big.NewInt(0),
		Status:         ContractCreated,
		Milestones:     legs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.storeContract(contract); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(contract))
	return contract.Clone(), nil
}

// Fund moves the contract total from the funder to the custody vault and
// marks the contract as funded.
func (e *Engine) Fund(id string, from [20]byte) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractCreated {
		return fmt.Errorf("%w: cannot fund in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Funder != from {
		return fmt.Errorf("%w: only the funder may fund", ErrUnauthorized)
	}
	vault, err := e.state.EscrowVaultAddress(contract.Token)
	if err != nil {
		return err
	}
	if err := e.transferToken(contract.Funder, vault, contract.Token, contract.TotalAmount); err != nil {
		return err
	}
	if err := e.state.EscrowCredit(contract.ID, contract.Token, contract.TotalAmount); err != nil {
		return err
	}
	contract.Status = ContractFunded
	contract.UpdatedAt = e.now()
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewFundedEvent(contract))
	return nil
}

func (e *Engine) milestoneAt(contract *GigContract, index int) (*Milestone, error) {
	if index < 0 || index >= len(contract.Milestones) {
		return nil, fmt.Errorf("%w: %d", ErrMilestoneIndex, index)
	}
	return contract.Milestones[index], nil
}

// SubmitMilestone records a deliverable reference for a pending milestone.
// Only the counterparty may submit, and only while the contract is funded or
// active. The first submission promotes a funded contract to active.
func (e *Engine) SubmitMilestone(id string, caller [20]byte, index int, deliverable string) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractFunded && contract.Status != ContractActive {
		return fmt.Errorf("%w: cannot submit in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Counterparty != caller {
		return fmt.Errorf("%w: only the counterparty may submit", ErrUnauthorized)
	}
	trimmed := strings.TrimSpace(deliverable)
	if trimmed == "" {
		return fmt.Errorf("%w: deliverable reference required", ErrInvalidMilestone)
	}
	milestone, err := e.milestoneAt(contract, index)
	if err != nil {
		return err
	}
	if milestone.Status != MilestonePending {
		return fmt.Errorf("%w: milestone %d not pending", ErrInvalidTransition, index)
	}
	now := e.now()
	milestone.Status = MilestoneSubmitted
	milestone.Deliverable = trimmed
	milestone.SubmittedAt = now
	if contract.Status == ContractFunded {
		contract.Status = ContractActive
	}
	contract.UpdatedAt = now
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewMilestoneSubmittedEvent(contract, index))
	return nil
}

// ApproveMilestone releases the milestone amount to the counterparty. This is
// the only path by which custodied value leaves the ledger toward the
// counterparty; when the released total reaches the contract total the
// contract completes.
func (e *Engine) ApproveMilestone(id string, caller [20]byte, index int) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractFunded && contract.Status != ContractActive {
		return fmt.Errorf("%w: cannot approve in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Funder != caller {
		return fmt.Errorf("%w: only the funder may approve", ErrUnauthorized)
	}
	milestone, err := e.milestoneAt(contract, index)
	if err != nil {
		return err
	}
	if milestone.Status != MilestoneSubmitted {
		return fmt.Errorf("%w: milestone %d not submitted", ErrInvalidTransition, index)
	}
	released := new(big.Int).Add(contract.ReleasedAmount, milestone.Amount)
	if released.Cmp(contract.TotalAmount) > 0 {
		return fmt.Errorf("escrow: release would exceed contract total")
	}
	vault, err := e.state.EscrowVaultAddress(contract.Token)
	if err != nil {
		return err
	}
	if err := e.transferToken(vault, contract.Counterparty, contract.Token, milestone.Amount); err != nil {
		return err
	}
	if err := e.state.EscrowDebit(contract.ID, contract.Token, milestone.Amount); err != nil {
		return err
	}
	now := e.now()
	milestone.Status = MilestonePaid
	milestone.PaidAt = now
	contract.ReleasedAmount = released
	contract.UpdatedAt = now
	e.emit(NewMilestoneApprovedEvent(contract, index))
	if contract.ReleasedAmount.Cmp(contract.TotalAmount) == 0 {
		contract.Status = ContractCompleted
	}
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewMilestonePaidEvent(contract, index))
	if contract.Status == ContractCompleted {
		e.emit(NewCompletedEvent(contract))
	}
	return nil
}

// RejectMilestone records the funder's refusal of a submitted deliverable.
// MilestoneRejected is terminal; the counterparty's recourse is RaiseDispute.
func (e *Engine) RejectMilestone(id string, caller [20]byte, index int, reason string) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractFunded && contract.Status != ContractActive {
		return fmt.Errorf("%w: cannot reject in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Funder != caller {
		return fmt.Errorf("%w: only the funder may reject", ErrUnauthorized)
	}
	milestone, err := e.milestoneAt(contract, index)
	if err != nil {
		return err
	}
	if milestone.Status != MilestoneSubmitted {
		return fmt.Errorf("%w: milestone %d not submitted", ErrInvalidTransition, index)
	}
	now := e.now()
	milestone.Status = MilestoneRejected
	milestone.RejectReason = strings.TrimSpace(reason)
	milestone.RejectedAt = now
	contract.UpdatedAt = now
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewMilestoneRejectedEvent(contract, index))
	return nil
}

// RaiseDispute suspends the contract and returns the snapshot the dispute
// registry consumes. Either party may invoke the transition while funds are
// in custody.
func (e *Engine) RaiseDispute(id string, caller [20]byte) (*DisputeSnapshot, error) {
	contract, err := e.loadContract(id)
	if err != nil {
		return nil, err
	}
	if contract.Status != ContractFunded && contract.Status != ContractActive {
		return nil, fmt.Errorf("%w: cannot dispute in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Funder != caller && contract.Counterparty != caller {
		return nil, fmt.Errorf("%w: only a contract party may dispute", ErrUnauthorized)
	}
	contract.Status = ContractDisputed
	contract.UpdatedAt = e.now()
	if err := e.storeContract(contract); err != nil {
		return nil, err
	}
	e.emit(NewDisputedEvent(contract))
	return &DisputeSnapshot{
		ContractID:   contract.ID,
		Funder:       contract.Funder,
		Counterparty: contract.Counterparty,
		Amount:       contract.Remaining(),
		Description:  fmt.Sprintf("gig contract %s", contract.ID),
	}, nil
}

// Cancel terminates the contract and refunds any custodied remainder to the
// funder. Only allowed before milestone work has been accepted, i.e. while
// created or funded.
func (e *Engine) Cancel(id string, caller [20]byte) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractCreated && contract.Status != ContractFunded {
		return fmt.Errorf("%w: cannot cancel in status %s", ErrInvalidTransition, contract.Status)
	}
	if contract.Funder != caller {
		return fmt.Errorf("%w: only the funder may cancel", ErrUnauthorized)
	}
	if contract.Status == ContractFunded {
		refund := contract.Remaining()
		if refund.Sign() > 0 {
			vault, err := e.state.EscrowVaultAddress(contract.Token)
			if err != nil {
				return err
			}
			if err := e.transferToken(vault, contract.Funder, contract.Token, refund); err != nil {
				return err
			}
			if err := e.state.EscrowDebit(contract.ID, contract.Token, refund); err != nil {
				return err
			}
		}
	}
	contract.Status = ContractCancelled
	contract.UpdatedAt = e.now()
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewCancelledEvent(contract))
	return nil
}

// ApplyResolution settles a resolved dispute outcome against the contract.
// Valid outcomes are "freelancer" (remainder to the counterparty),
// "client" (remainder refunded to the funder), and "split" (half each, odd
// unit to the funder). Escalated disputes carry no settlement instruction and
// leave the contract disputed.
func (e *Engine) ApplyResolution(id string, outcome string) error {
	contract, err := e.loadContract(id)
	if err != nil {
		return err
	}
	if contract.Status != ContractDisputed {
		return fmt.Errorf("%w: cannot resolve in status %s", ErrInvalidTransition, contract.Status)
	}
	remaining := contract.Remaining()
	vault, err := e.state.EscrowVaultAddress(contract.Token)
	if err != nil {
		return err
	}
	normalized := strings.ToLower(strings.TrimSpace(outcome))
	switch normalized {
	case "freelancer":
		if err := e.settle(contract, vault, contract.Counterparty, remaining, nil, nil); err != nil {
			return err
		}
		contract.ReleasedAmount = new(big.Int).Set(contract.TotalAmount)
		contract.Status = ContractCompleted
	case "client":
		if err := e.settle(contract, vault, contract.Funder, remaining, nil, nil); err != nil {
			return err
		}
		contract.Status = ContractCancelled
	case "split":
		half := new(big.Int).Rsh(remaining, 1)
		rest := new(big.Int).Sub(remaining, half)
		if err := e.settle(contract, vault, contract.Counterparty, half, &contract.Funder, rest); err != nil {
			return err
		}
		contract.ReleasedAmount = new(big.Int).Add(contract.ReleasedAmount, half)
		contract.Status = ContractCompleted
	default:
		return fmt.Errorf("escrow: invalid resolution outcome %s", outcome)
	}
	contract.UpdatedAt = e.now()
	if err := e.storeContract(contract); err != nil {
		return err
	}
	e.emit(NewResolvedEvent(contract, normalized))
	return nil
}

func (e *Engine) settle(contract *GigContract, vault, first [20]byte, firstAmt *big.Int, second *[20]byte, secondAmt *big.Int) error {
	total := cloneBigInt(firstAmt)
	if firstAmt.Sign() > 0 {
		if err := e.transferToken(vault, first, contract.Token, firstAmt); err != nil {
			return err
		}
	}
	if second != nil && secondAmt != nil {
		total.Add(total, secondAmt)
		if secondAmt.Sign() > 0 {
			if err := e.transferToken(vault, *second, contract.Token, secondAmt); err != nil {
				return err
			}
		}
	}
	if total.Sign() > 0 {
		if err := e.state.EscrowDebit(contract.ID, contract.Token, total); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a defensive copy of the stored contract.
func (e *Engine) Get(id string) (*GigContract, error) {
	contract, err := e.loadContract(id)
	if err != nil {
		return nil, err
	}
	return contract.Clone(), nil
}

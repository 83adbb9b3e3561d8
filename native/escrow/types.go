package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ContractStatus represents the lifecycle states supported by the gig
// contract state machine.
type ContractStatus uint8

const (
	// ContractCreated marks contracts that exist but hold no funds yet.
	ContractCreated ContractStatus = iota
	// ContractFunded marks contracts whose full amount sits in the custody
	// vault awaiting milestone delivery.
	ContractFunded
	// ContractActive marks contracts with at least one submitted milestone.
	ContractActive
	// ContractCompleted marks contracts that have released their full amount.
	ContractCompleted
	// ContractDisputed suspends milestone processing pending dispute
	// resolution.
	ContractDisputed
	// ContractCancelled marks contracts terminated by the funder before
	// completion. Remaining custody is refunded on transition.
	ContractCancelled
)

// Valid reports whether the status value is within the supported range.
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractCreated, ContractFunded, ContractActive, ContractCompleted, ContractDisputed, ContractCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the contract accepts no further transitions.
func (s ContractStatus) Terminal() bool {
	return s == ContractCompleted || s == ContractCancelled
}

// String implements fmt.Stringer for logging and event emission.
func (s ContractStatus) String() string {
	switch s {
	case ContractCreated:
		return "created"
	case ContractFunded:
		return "funded"
	case ContractActive:
		return "active"
	case ContractCompleted:
		return "completed"
	case ContractDisputed:
		return "disputed"
	case ContractCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MilestoneStatus represents the state of an individual milestone.
type MilestoneStatus uint8

const (
	// MilestonePending indicates the milestone awaits a deliverable.
	MilestonePending MilestoneStatus = iota
	// MilestoneSubmitted indicates a deliverable reference has been recorded
	// and awaits the funder's verdict.
	MilestoneSubmitted
	// MilestoneApproved is the transient verdict recorded immediately before
	// payout; persisted milestones move straight to MilestonePaid.
	MilestoneApproved
	// MilestoneRejected indicates the funder declined the deliverable. The
	// state is terminal; the counterparty recovers value through a dispute.
	MilestoneRejected
	// MilestonePaid indicates the milestone amount has been released to the
	// counterparty.
	MilestonePaid
)

// Valid reports whether the status value is within the supported range.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneSubmitted, MilestoneApproved, MilestoneRejected, MilestonePaid:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for logging and event emission.
func (s MilestoneStatus) String() string {
	switch s {
	case MilestonePending:
		return "pending"
	case MilestoneSubmitted:
		return "submitted"
	case MilestoneApproved:
		return "approved"
	case MilestoneRejected:
		return "rejected"
	case MilestonePaid:
		return "paid"
	default:
		return "unknown"
	}
}

// ErrInvalidMilestone describes malformed milestone definitions.
var ErrInvalidMilestone = errors.New("escrow: invalid milestone")

// MilestoneSpec is the caller-supplied definition of a milestone at contract
// creation time.
type MilestoneSpec struct {
	Description string
	Amount      *big.Int
	Deadline    int64
}

// Milestone captures a single unit of deliverable work and its payment.
type Milestone struct {
	Description  string          `json:"description"`
	Amount       *big.Int        `json:"amount"`
	Deadline     int64           `json:"deadline"`
	Status       MilestoneStatus `json:"status"`
	Deliverable  string          `json:"deliverable,omitempty"`
	RejectReason string          `json:"rejectReason,omitempty"`
	SubmittedAt  int64           `json:"submittedAt,omitempty"`
	PaidAt       int64           `json:"paidAt,omitempty"`
	RejectedAt   int64           `json:"rejectedAt,omitempty"`
}

// Clone returns a deep copy of the milestone to avoid callers mutating shared
// state.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Amount != nil {
		clone.Amount = new(big.Int).Set(m.Amount)
	}
	return &clone
}

// GigContract captures the parties, custody accounting, and runtime status of
// a milestone-based escrow agreement. The identifier is caller-assigned and
// must be unique across the ledger.
type GigContract struct {
	ID             string         `json:"id"`
	Funder         [20]byte       `json:"funder"`
	Counterparty   [20]byte       `json:"counterparty"`
	Token          string         `json:"token"`
	TotalAmount    *big.Int       `json:"totalAmount"`
	ReleasedAmount *big.Int       `json:"releasedAmount"`
	Status         ContractStatus `json:"status"`
	Milestones     []*Milestone   `json:"milestones"`
	CreatedAt      int64          `json:"createdAt"`
	UpdatedAt      int64          `json:"updatedAt"`
}

// Clone returns a deep copy of the contract so callers can safely mutate the
// copy without affecting the stored instance.
func (c *GigContract) Clone() *GigContract {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TotalAmount != nil {
		clone.TotalAmount = new(big.Int).Set(c.TotalAmount)
	} else {
		clone.TotalAmount = big.NewInt(0)
	}
	if c.ReleasedAmount != nil {
		clone.ReleasedAmount = new(big.Int).Set(c.ReleasedAmount)
	} else {
		clone.ReleasedAmount = big.NewInt(0)
	}
	if len(c.Milestones) > 0 {
		clone.Milestones = make([]*Milestone, len(c.Milestones))
		for i, milestone := range c.Milestones {
			clone.Milestones[i] = milestone.Clone()
		}
	}
	return &clone
}

// Remaining returns the custodied amount not yet released.
func (c *GigContract) Remaining() *big.Int {
	if c == nil {
		return big.NewInt(0)
	}
	total := big.NewInt(0)
	if c.TotalAmount != nil {
		total.Set(c.TotalAmount)
	}
	if c.ReleasedAmount != nil {
		total.Sub(total, c.ReleasedAmount)
	}
	return total
}

// NormalizeToken ensures the provided token symbol matches a supported value
// ("GIG" or "ZGIG") and returns the canonical uppercase form.
func NormalizeToken(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	switch trimmed {
	case "GIG", "ZGIG":
		return trimmed, nil
	default:
		return "", fmt.Errorf("unsupported escrow token: %s", symbol)
	}
}

// SanitizeContract validates and normalises the supplied contract, returning
// a cloned instance with canonical token casing and non-nil amount fields.
// The function does not mutate the original value.
func SanitizeContract(c *GigContract) (*GigContract, error) {
	if c == nil {
		return nil, fmt.Errorf("nil contract")
	}
	clone := c.Clone()
	if strings.TrimSpace(clone.ID) == "" {
		return nil, fmt.Errorf("contract id must not be empty")
	}
	token, err := NormalizeToken(clone.Token)
	if err != nil {
		return nil, err
	}
	clone.Token = token
	if clone.TotalAmount.Sign() < 0 {
		return nil, fmt.Errorf("contract total must be non-negative")
	}
	if clone.ReleasedAmount.Sign() < 0 {
		return nil, fmt.Errorf("released amount must be non-negative")
	}
	if clone.ReleasedAmount.Cmp(clone.TotalAmount) > 0 {
		return nil, fmt.Errorf("released amount exceeds total")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("invalid contract status: %d", clone.Status)
	}
	sum := big.NewInt(0)
	for i, milestone := range clone.Milestones {
		if milestone == nil {
			return nil, fmt.Errorf("%w: milestone %d nil", ErrInvalidMilestone, i)
		}
		if milestone.Amount == nil || milestone.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: milestone %d amount must be positive", ErrInvalidMilestone, i)
		}
		if !milestone.Status.Valid() {
			return nil, fmt.Errorf("%w: milestone %d status %d", ErrInvalidMilestone, i, milestone.Status)
		}
		sum.Add(sum, milestone.Amount)
	}
	if sum.Cmp(clone.TotalAmount) != 0 {
		return nil, fmt.Errorf("milestone amounts do not sum to total")
	}
	return clone, nil
}

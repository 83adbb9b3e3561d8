package dispute

import (
	"math/big"
)

// Status enumerates the lifecycle phases a dispute transitions through as it
// collects evidence, accrues votes, and resolves.
type Status uint8

const (
	// StatusPending indicates the dispute is open but no evidence has been
	// recorded yet.
	StatusPending Status = iota
	// StatusUnderReview indicates at least one party has submitted evidence
	// and oracles may vote.
	StatusUnderReview
	// StatusResolved marks disputes with a final outcome.
	StatusResolved
	// StatusCancelled marks disputes closed administratively before any
	// outcome was produced.
	StatusCancelled
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusResolved, StatusCancelled:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for logging and event emission.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUnderReview:
		return "under_review"
	case StatusResolved:
		return "resolved"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome enumerates the supported dispute results. Only the two binary
// outcomes may be voted directly; Split and Escalated are derived during
// resolution.
type Outcome string

const (
	// OutcomeNone marks an unresolved dispute.
	OutcomeNone Outcome = ""
	// OutcomeFreelancerWins awards the disputed amount to the counterparty.
	OutcomeFreelancerWins Outcome = "freelancer"
	// OutcomeClientWins awards the disputed amount to the funder.
	OutcomeClientWins Outcome = "client"
	// OutcomeSplit records an exact tie between the binary tallies.
	OutcomeSplit Outcome = "split"
	// OutcomeEscalated signals that quorum was never reached and external
	// arbitration is required.
	OutcomeEscalated Outcome = "escalated"
)

// Votable reports whether the outcome is a legal ballot selection.
func (o Outcome) Votable() bool {
	return o == OutcomeFreelancerWins || o == OutcomeClientWins
}

// String implements fmt.Stringer for logging and event emission.
func (o Outcome) String() string { return string(o) }

// Dispute captures the snapshot of a contested contract along with the
// evidence and vote bookkeeping. The registry copies party and amount data at
// creation time; it never dereferences the escrow ledger.
type Dispute struct {
	ID                 uint64   `json:"id"`
	ContractID         string   `json:"contractId"`
	Client             [20]byte `json:"client"`
	Freelancer         [20]byte `json:"freelancer"`
	Amount             *big.Int `json:"amount"`
	Description        string   `json:"description"`
	Status             Status   `json:"status"`
	Outcome            Outcome  `json:"outcome"`
	ClientEvidence     []string `json:"clientEvidence,omitempty"`
	FreelancerEvidence []string `json:"freelancerEvidence,omitempty"`
	FreelancerVotes    uint64   `json:"freelancerVotes"`
	ClientVotes        uint64   `json:"clientVotes"`
	CreatedAt          int64    `json:"createdAt"`
	VotingDeadline     int64    `json:"votingDeadline"`
	ResolvedAt         int64    `json:"resolvedAt,omitempty"`
}

// Clone returns a deep copy of the dispute.
func (d *Dispute) Clone() *Dispute {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	clone.ClientEvidence = append([]string(nil), d.ClientEvidence...)
	clone.FreelancerEvidence = append([]string(nil), d.FreelancerEvidence...)
	return &clone
}

// VotesCast returns the combined binary tally used for the quorum check.
func (d *Dispute) VotesCast() uint64 {
	if d == nil {
		return 0
	}
	return d.FreelancerVotes + d.ClientVotes
}

// DefaultReputation is the neutral baseline assigned at registration.
// Resolution outcomes are expected to adjust it over time; the current
// engine stores the field without computing adjustments.
const DefaultReputation uint64 = 100

// Oracle describes a staked, registered voter.
type Oracle struct {
	Address        [20]byte `json:"address"`
	Stake          *big.Int `json:"stake"`
	Reputation     uint64   `json:"reputation"`
	VotesCast      uint64   `json:"votesCast"`
	PendingRewards *big.Int `json:"pendingRewards"`
	RegisteredAt   int64    `json:"registeredAt"`
}

// Clone returns a deep copy of the oracle record.
func (o *Oracle) Clone() *Oracle {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Stake != nil {
		clone.Stake = new(big.Int).Set(o.Stake)
	} else {
		clone.Stake = big.NewInt(0)
	}
	if o.PendingRewards != nil {
		clone.PendingRewards = new(big.Int).Set(o.PendingRewards)
	} else {
		clone.PendingRewards = big.NewInt(0)
	}
	return &clone
}

// Vote describes a single oracle's immutable ballot on a dispute.
type Vote struct {
	DisputeID uint64   `json:"disputeId"`
	Voter     [20]byte `json:"voter"`
	Choice    Outcome  `json:"choice"`
	Timestamp int64    `json:"timestamp"`
}

// Params captures the runtime knobs that control oracle admission and vote
// tallying. Deadlines on already-open disputes are fixed at creation time;
// changing the voting period never retro-applies.
type Params struct {
	MinStake            *big.Int
	VotingPeriodSeconds uint64
	Quorum              uint64
	RewardPerVote       *big.Int
}

// Clone returns a copy safe for modification.
func (p Params) Clone() Params {
	clone := p
	if p.MinStake != nil {
		clone.MinStake = new(big.Int).Set(p.MinStake)
	} else {
		clone.MinStake = big.NewInt(0)
	}
	if p.RewardPerVote != nil {
		clone.RewardPerVote = new(big.Int).Set(p.RewardPerVote)
	} else {
		clone.RewardPerVote = big.NewInt(0)
	}
	return clone
}

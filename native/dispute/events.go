package dispute

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"gigescrow/core/types"
)

const (
	EventTypeDisputeCreated     = "dispute.created"
	EventTypeEvidenceSubmitted  = "dispute.evidence"
	EventTypeVoteCast           = "dispute.vote"
	EventTypeDisputeResolved    = "dispute.resolved"
	EventTypeDisputeCancelled   = "dispute.cancelled"
	EventTypeOracleRegistered   = "dispute.oracle.registered"
	EventTypeOracleUnregistered = "dispute.oracle.unregistered"
	EventTypeRewardsClaimed     = "dispute.rewards.claimed"
)

// NewDisputeCreatedEvent returns the canonical payload for a newly opened
// dispute.
func NewDisputeCreatedEvent(d *Dispute) *types.Event {
	return newDisputeEvent(EventTypeDisputeCreated, d)
}

// NewEvidenceEvent emits the payload for a recorded evidence reference.
func NewEvidenceEvent(d *Dispute, submitter [20]byte, reference string) *types.Event {
	evt := newDisputeEvent(EventTypeEvidenceSubmitted, d)
	evt.Attributes["submitter"] = hex.EncodeToString(submitter[:])
	evt.Attributes["reference"] = reference
	return evt
}

// NewVoteEvent emits the payload for a recorded ballot.
func NewVoteEvent(v *Vote) *types.Event {
	attrs := make(map[string]string)
	if v == nil {
		return &types.Event{Type: EventTypeVoteCast, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(v.DisputeID, 10)
	attrs["voter"] = hex.EncodeToString(v.Voter[:])
	attrs["choice"] = v.Choice.String()
	attrs["timestamp"] = strconv.FormatInt(v.Timestamp, 10)
	return &types.Event{Type: EventTypeVoteCast, Attributes: attrs}
}

// NewDisputeResolvedEvent emits the payload for a dispute that reached a
// final outcome, whether by tally or escalation.
func NewDisputeResolvedEvent(d *Dispute) *types.Event {
	evt := newDisputeEvent(EventTypeDisputeResolved, d)
	if d != nil {
		evt.Attributes["resolvedAt"] = strconv.FormatInt(d.ResolvedAt, 10)
	}
	return evt
}

// NewDisputeCancelledEvent emits the payload for an administrative close.
func NewDisputeCancelledEvent(d *Dispute) *types.Event {
	return newDisputeEvent(EventTypeDisputeCancelled, d)
}

// NewOracleRegisteredEvent emits the payload for a newly staked oracle.
func NewOracleRegisteredEvent(o *Oracle) *types.Event {
	return newOracleEvent(EventTypeOracleRegistered, o)
}

// NewOracleUnregisteredEvent emits the payload for a voluntary exit.
func NewOracleUnregisteredEvent(o *Oracle) *types.Event {
	return newOracleEvent(EventTypeOracleUnregistered, o)
}

// NewRewardsClaimedEvent emits the payload for a reward payout.
func NewRewardsClaimedEvent(o *Oracle, amount *big.Int) *types.Event {
	evt := newOracleEvent(EventTypeRewardsClaimed, o)
	if amount != nil {
		evt.Attributes["amount"] = amount.String()
	}
	return evt
}

func newDisputeEvent(eventType string, d *Dispute) *types.Event {
	attrs := make(map[string]string)
	if d == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(d.ID, 10)
	attrs["contractId"] = d.ContractID
	attrs["client"] = hex.EncodeToString(d.Client[:])
	attrs["freelancer"] = hex.EncodeToString(d.Freelancer[:])
	if d.Amount != nil {
		attrs["amount"] = d.Amount.String()
	}
	attrs["status"] = d.Status.String()
	if d.Outcome != OutcomeNone {
		attrs["outcome"] = d.Outcome.String()
	}
	attrs["freelancerVotes"] = strconv.FormatUint(d.FreelancerVotes, 10)
	attrs["clientVotes"] = strconv.FormatUint(d.ClientVotes, 10)
	attrs["votingDeadline"] = strconv.FormatInt(d.VotingDeadline, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newOracleEvent(eventType string, o *Oracle) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["oracle"] = hex.EncodeToString(o.Address[:])
	if o.Stake != nil {
		attrs["stake"] = o.Stake.String()
	}
	attrs["reputation"] = strconv.FormatUint(o.Reputation, 10)
	attrs["votesCast"] = strconv.FormatUint(o.VotesCast, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}

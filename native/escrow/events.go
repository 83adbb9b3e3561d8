package escrow

import (
	"encoding/hex"
	"strconv"
	"strings"

	"gigescrow/core/types"
)

const (
	EventTypeContractCreated    = "escrow.created"
	EventTypeContractFunded     = "escrow.funded"
	EventTypeContractCompleted  = "escrow.completed"
	EventTypeContractCancelled  = "escrow.cancelled"
	EventTypeContractDisputed   = "escrow.disputed"
	EventTypeContractResolved   = "escrow.resolved"
	EventTypeMilestoneSubmitted = "escrow.milestone.submitted"
	EventTypeMilestoneApproved  = "escrow.milestone.approved"
	EventTypeMilestoneRejected  = "escrow.milestone.rejected"
	EventTypeMilestonePaid      = "escrow.milestone.paid"
)

// NewCreatedEvent returns the canonical payload for a newly created contract.
func NewCreatedEvent(c *GigContract) *types.Event { return newContractEvent(EventTypeContractCreated, c) }

// NewFundedEvent returns the canonical payload emitted when the funder moves
// the contract total into custody.
func NewFundedEvent(c *GigContract) *types.Event { return newContractEvent(EventTypeContractFunded, c) }

// NewCompletedEvent returns the canonical payload emitted when the full
// contract amount has been released.
func NewCompletedEvent(c *GigContract) *types.Event {
	return newContractEvent(EventTypeContractCompleted, c)
}

// NewCancelledEvent returns the canonical payload emitted when a contract is
// cancelled and its remainder refunded.
func NewCancelledEvent(c *GigContract) *types.Event {
	return newContractEvent(EventTypeContractCancelled, c)
}

// NewDisputedEvent returns the canonical payload emitted when a party raises
// a dispute.
func NewDisputedEvent(c *GigContract) *types.Event {
	return newContractEvent(EventTypeContractDisputed, c)
}

// NewResolvedEvent returns the canonical payload emitted when a dispute
// outcome is applied back to the contract.
func NewResolvedEvent(c *GigContract, outcome string) *types.Event {
	evt := newContractEvent(EventTypeContractResolved, c)
	if strings.TrimSpace(outcome) != "" {
		evt.Attributes["outcome"] = outcome
	}
	return evt
}

// NewMilestoneSubmittedEvent emits the payload for a recorded deliverable.
func NewMilestoneSubmittedEvent(c *GigContract, index int) *types.Event {
	return newMilestoneEvent(EventTypeMilestoneSubmitted, c, index)
}

// NewMilestoneApprovedEvent emits the payload for an accepted deliverable.
func NewMilestoneApprovedEvent(c *GigContract, index int) *types.Event {
	return newMilestoneEvent(EventTypeMilestoneApproved, c, index)
}

// NewMilestoneRejectedEvent emits the payload for a declined deliverable.
func NewMilestoneRejectedEvent(c *GigContract, index int) *types.Event {
	evt := newMilestoneEvent(EventTypeMilestoneRejected, c, index)
	if c != nil && index >= 0 && index < len(c.Milestones) {
		if reason := c.Milestones[index].RejectReason; reason != "" {
			evt.Attributes["reason"] = reason
		}
	}
	return evt
}

// NewMilestonePaidEvent emits the payload for a released milestone payment.
func NewMilestonePaidEvent(c *GigContract, index int) *types.Event {
	return newMilestoneEvent(EventTypeMilestonePaid, c, index)
}

func newContractEvent(eventType string, c *GigContract) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = c.ID
	attrs["funder"] = hex.EncodeToString(c.Funder[:])
	attrs["counterparty"] = hex.EncodeToString(c.Counterparty[:])
	attrs["token"] = c.Token
	if c.TotalAmount != nil {
		attrs["totalAmount"] = c.TotalAmount.String()
	}
	if c.ReleasedAmount != nil {
		attrs["releasedAmount"] = c.ReleasedAmount.String()
	}
	attrs["status"] = c.Status.String()
	attrs["createdAt"] = strconv.FormatInt(c.CreatedAt, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newMilestoneEvent(eventType string, c *GigContract, index int) *types.Event {
	evt := newContractEvent(eventType, c)
	evt.Attributes["milestone"] = strconv.Itoa(index)
	if c != nil && index >= 0 && index < len(c.Milestones) {
		milestone := c.Milestones[index]
		if milestone.Amount != nil {
			evt.Attributes["amount"] = milestone.Amount.String()
		}
		evt.Attributes["milestoneStatus"] = milestone.Status.String()
		if milestone.Deliverable != "" {
			evt.Attributes["deliverable"] = milestone.Deliverable
		}
	}
	return evt
}

package rpc

import (
	"gigescrow/crypto"
	"gigescrow/native/dispute"
	"gigescrow/native/escrow"
)

// Result payloads render addresses back in bech32 and big integers as decimal
// strings so clients never depend on Go's JSON encoding of raw byte arrays.

type milestoneResult struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Deadline     int64  `json:"deadline"`
	Status       string `json:"status"`
	Deliverable  string `json:"deliverable,omitempty"`
	RejectReason string `json:"rejectReason,omitempty"`
	SubmittedAt  int64  `json:"submittedAt,omitempty"`
	PaidAt       int64  `json:"paidAt,omitempty"`
	RejectedAt   int64  `json:"rejectedAt,omitempty"`
}

type gigContractResult struct {
	ID             string            `json:"id"`
	Funder         string            `json:"funder"`
	Counterparty   string            `json:"counterparty"`
	Token          string            `json:"token"`
	TotalAmount    string            `json:"totalAmount"`
	ReleasedAmount string            `json:"releasedAmount"`
	Status         string            `json:"status"`
	Milestones     []milestoneResult `json:"milestones"`
	CreatedAt      int64             `json:"createdAt"`
	UpdatedAt      int64             `json:"updatedAt"`
}

func encodeAddr(addr [20]byte) string {
	return crypto.NewAddress(crypto.GigPrefix, append([]byte(nil), addr[:]...)).String()
}

func contractResult(c *escrow.GigContract) gigContractResult {
	out := gigContractResult{
		ID:             c.ID,
		Funder:         encodeAddr(c.Funder),
		Counterparty:   encodeAddr(c.Counterparty),
		Token:          c.Token,
		TotalAmount:    c.TotalAmount.String(),
		ReleasedAmount: c.ReleasedAmount.String(),
		Status:         c.Status.String(),
		Milestones:     make([]milestoneResult, len(c.Milestones)),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	for i, m := range c.Milestones {
		out.Milestones[i] = milestoneResult{
			Description:  m.Description,
			Amount:       m.Amount.String(),
			Deadline:     m.Deadline,
			Status:       m.Status.String(),
			Deliverable:  m.Deliverable,
			RejectReason: m.RejectReason,
			SubmittedAt:  m.SubmittedAt,
			PaidAt:       m.PaidAt,
			RejectedAt:   m.RejectedAt,
		}
	}
	return out
}

type oracleStatusResult struct {
	Address        string `json:"address"`
	Stake          string `json:"stake"`
	Reputation     uint64 `json:"reputation"`
	VotesCast      uint64 `json:"votesCast"`
	PendingRewards string `json:"pendingRewards"`
	RegisteredAt   int64  `json:"registeredAt"`
}

func oracleResult(o *dispute.Oracle) oracleStatusResult {
	return oracleStatusResult{
		Address:        encodeAddr(o.Address),
		Stake:          o.Stake.String(),
		Reputation:     o.Reputation,
		VotesCast:      o.VotesCast,
		PendingRewards: o.PendingRewards.String(),
		RegisteredAt:   o.RegisteredAt,
	}
}

type disputeStatusResult struct {
	ID                 uint64   `json:"id"`
	ContractID         string   `json:"contractId"`
	Client             string   `json:"client"`
	Freelancer         string   `json:"freelancer"`
	Amount             string   `json:"amount"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	Outcome            string   `json:"outcome,omitempty"`
	ClientEvidence     []string `json:"clientEvidence,omitempty"`
	FreelancerEvidence []string `json:"freelancerEvidence,omitempty"`
	FreelancerVotes    uint64   `json:"freelancerVotes"`
	ClientVotes        uint64   `json:"clientVotes"`
	CreatedAt          int64    `json:"createdAt"`
	VotingDeadline     int64    `json:"votingDeadline"`
	ResolvedAt         int64    `json:"resolvedAt,omitempty"`
}

func disputeResult(d *dispute.Dispute) disputeStatusResult {
	return disputeStatusResult{
		ID:                 d.ID,
		ContractID:         d.ContractID,
		Client:             encodeAddr(d.Client),
		Freelancer:         encodeAddr(d.Freelancer),
		Amount:             d.Amount.String(),
		Description:        d.Description,
		Status:             d.Status.String(),
		Outcome:            d.Outcome.String(),
		ClientEvidence:     append([]string(nil), d.ClientEvidence...),
		FreelancerEvidence: append([]string(nil), d.FreelancerEvidence...),
		FreelancerVotes:    d.FreelancerVotes,
		ClientVotes:        d.ClientVotes,
		CreatedAt:          d.CreatedAt,
		VotingDeadline:     d.VotingDeadline,
		ResolvedAt:         d.ResolvedAt,
	}
}

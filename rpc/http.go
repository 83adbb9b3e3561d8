package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gigescrow/crypto"
	"gigescrow/eventstore"
	"gigescrow/gateway/middleware"
	"gigescrow/native/dispute"
	"gigescrow/native/escrow"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Server exposes the escrow ledger and dispute registry over JSON-RPC. The
// caller identity on every mutating method arrives as a bech32 "caller"
// parameter supplied by the external identity layer; the bearer token gates
// write access to the endpoint itself.
type Server struct {
	escrow    *escrow.Engine
	disputes  *dispute.Engine
	journal   *eventstore.Store
	authToken string
}

// NewServer wires the RPC surface to the two engines and the event journal.
// An empty authToken disables write methods entirely.
func NewServer(escrowEngine *escrow.Engine, disputeEngine *dispute.Engine, journal *eventstore.Store, authToken string) *Server {
	return &Server{
		escrow:    escrowEngine,
		disputes:  disputeEngine,
		journal:   journal,
		authToken: strings.TrimSpace(authToken),
	}
}

// Router mounts the RPC handler together with health and metrics endpoints.
// The rate limiter, when supplied, fronts every route including the
// unauthenticated ones.
func (s *Server) Router(obs *middleware.Observability, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware())
	}
	if obs != nil {
		r.Use(obs.Middleware("rpc"))
		r.Method(http.MethodGet, "/metrics", obs.MetricsHandler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/", s.handle)
	return r
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

func mutating(method string) bool {
	switch method {
	case "escrow_get", "escrow_listEvents", "dispute_get", "dispute_getOracle", "dispute_params", "dispute_totals":
		return false
	default:
		return true
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "unable to read request body", err.Error())
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}
	if len(body) > maxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, nil, codeInvalidRequest, "request body too large", nil)
		return
	}
	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}
	if mutating(method) && !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "bearer token required", nil)
		return
	}

	switch method {
	case "escrow_create":
		s.handleEscrowCreate(w, req)
	case "escrow_fund":
		s.handleEscrowFund(w, req)
	case "escrow_submitMilestone":
		s.handleSubmitMilestone(w, req)
	case "escrow_approveMilestone":
		s.handleApproveMilestone(w, req)
	case "escrow_rejectMilestone":
		s.handleRejectMilestone(w, req)
	case "escrow_raiseDispute":
		s.handleRaiseDispute(w, req)
	case "escrow_cancel":
		s.handleEscrowCancel(w, req)
	case "escrow_applyOutcome":
		s.handleApplyOutcome(w, req)
	case "escrow_get":
		s.handleEscrowGet(w, req)
	case "escrow_listEvents":
		s.handleListEvents(w, req)
	case "dispute_registerOracle":
		s.handleRegisterOracle(w, req)
	case "dispute_unregisterOracle":
		s.handleUnregisterOracle(w, req)
	case "dispute_getOracle":
		s.handleGetOracle(w, req)
	case "dispute_submitEvidence":
		s.handleSubmitEvidence(w, req)
	case "dispute_castVote":
		s.handleCastVote(w, req)
	case "dispute_manualResolve":
		s.handleManualResolve(w, req)
	case "dispute_cancel":
		s.handleDisputeCancel(w, req)
	case "dispute_claimRewards":
		s.handleClaimRewards(w, req)
	case "dispute_get":
		s.handleDisputeGet(w, req)
	case "dispute_params":
		s.handleDisputeParams(w, req)
	case "dispute_totals":
		s.handleDisputeTotals(w, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", method), nil)
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected exactly one params object")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseCaller(raw string) ([20]byte, error) {
	return crypto.DecodeAddressBytes(strings.TrimSpace(raw))
}

func parseAmount(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("amount must be a decimal string")
	}
	return value, nil
}

func engineErrorCode(err error) int {
	switch {
	case errors.Is(err, escrow.ErrUnauthorized), errors.Is(err, dispute.ErrUnauthorized):
		return codeUnauthorized
	default:
		return codeServerError
	}
}

func writeEngineError(w http.ResponseWriter, req *RPCRequest, err error) {
	writeError(w, http.StatusBadRequest, req.ID, engineErrorCode(err), err.Error(), nil)
}

// --- Escrow handlers ---

type milestoneParam struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Deadline    int64  `json:"deadline"`
}

type escrowCreateParams struct {
	Caller       string           `json:"caller"`
	ID           string           `json:"id"`
	Counterparty string           `json:"counterparty"`
	Token        string           `json:"token"`
	Milestones   []milestoneParam `json:"milestones"`
}

func (s *Server) handleEscrowCreate(w http.ResponseWriter, req *RPCRequest) {
	var params escrowCreateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	funder, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	counterparty, err := parseCaller(params.Counterparty)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid counterparty address", err.Error())
		return
	}
	specs := make([]escrow.MilestoneSpec, len(params.Milestones))
	for i, m := range params.Milestones {
		amount, err := parseAmount(m.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, fmt.Sprintf("milestone %d amount", i), err.Error())
			return
		}
		specs[i] = escrow.MilestoneSpec{Description: m.Description, Amount: amount, Deadline: m.Deadline}
	}
	contract, err := s.escrow.Create(params.ID, funder, counterparty, params.Token, specs)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, contractResult(contract))
}

type contractCallParams struct {
	Caller string `json:"caller"`
	ID     string `json:"id"`
}

func (s *Server) handleEscrowFund(w http.ResponseWriter, req *RPCRequest) {
	var params contractCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.escrow.Fund(params.ID, caller); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "funded"})
}

type milestoneCallParams struct {
	Caller      string `json:"caller"`
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Deliverable string `json:"deliverable,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func (s *Server) handleSubmitMilestone(w http.ResponseWriter, req *RPCRequest) {
	var params milestoneCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.escrow.SubmitMilestone(params.ID, caller, params.Index, params.Deliverable); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "submitted"})
}

func (s *Server) handleApproveMilestone(w http.ResponseWriter, req *RPCRequest) {
	var params milestoneCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.escrow.ApproveMilestone(params.ID, caller, params.Index); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "approved"})
}

func (s *Server) handleRejectMilestone(w http.ResponseWriter, req *RPCRequest) {
	var params milestoneCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.escrow.RejectMilestone(params.ID, caller, params.Index, params.Reason); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "rejected"})
}

// handleRaiseDispute suspends the contract and atomically opens the registry
// dispute from the ledger snapshot, returning the new dispute id.
func (s *Server) handleRaiseDispute(w http.ResponseWriter, req *RPCRequest) {
	var params contractCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	snapshot, err := s.escrow.RaiseDispute(params.ID, caller)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	disputeID, err := s.disputes.CreateDispute(snapshot.ContractID, snapshot.Counterparty, snapshot.Funder, snapshot.Amount, snapshot.Description)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"disputeId": disputeID})
}

func (s *Server) handleEscrowCancel(w http.ResponseWriter, req *RPCRequest) {
	var params contractCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.escrow.Cancel(params.ID, caller); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "cancelled"})
}

type applyOutcomeParams struct {
	DisputeID uint64 `json:"disputeId"`
}

// handleApplyOutcome settles a resolved dispute against its contract. The
// settlement instruction is derived from the recorded outcome; escalated
// disputes carry none and are rejected.
func (s *Server) handleApplyOutcome(w http.ResponseWriter, req *RPCRequest) {
	var params applyOutcomeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	d, err := s.disputes.Get(params.DisputeID)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	if d.Status != dispute.StatusResolved {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "dispute not resolved", nil)
		return
	}
	switch d.Outcome {
	case dispute.OutcomeFreelancerWins, dispute.OutcomeClientWins, dispute.OutcomeSplit:
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, fmt.Sprintf("outcome %q carries no settlement", d.Outcome), nil)
		return
	}
	if err := s.escrow.ApplyResolution(d.ContractID, d.Outcome.String()); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"contractId": d.ContractID, "outcome": d.Outcome.String()})
}

type escrowGetParams struct {
	ID string `json:"id"`
}

func (s *Server) handleEscrowGet(w http.ResponseWriter, req *RPCRequest) {
	var params escrowGetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	contract, err := s.escrow.Get(params.ID)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, contractResult(contract))
}

type listEventsParams struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, req *RPCRequest) {
	var params listEventsParams
	if len(req.Params) > 0 {
		if err := decodeParams(req, &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
			return
		}
	}
	if s.journal == nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "event journal not configured", nil)
		return
	}
	events, err := s.journal.List(params.Prefix, params.Limit)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, events)
}

// --- Dispute handlers ---

type registerOracleParams struct {
	Caller string `json:"caller"`
	Stake  string `json:"stake"`
}

func (s *Server) handleRegisterOracle(w http.ResponseWriter, req *RPCRequest) {
	var params registerOracleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	stake, err := parseAmount(params.Stake)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid stake", err.Error())
		return
	}
	oracle, err := s.disputes.RegisterOracle(caller, stake)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, oracleResult(oracle))
}

type oracleCallParams struct {
	Caller string `json:"caller"`
}

func (s *Server) handleUnregisterOracle(w http.ResponseWriter, req *RPCRequest) {
	var params oracleCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.disputes.UnregisterOracle(caller); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "unregistered"})
}

func (s *Server) handleGetOracle(w http.ResponseWriter, req *RPCRequest) {
	var params oracleCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	oracle, err := s.disputes.GetOracle(caller)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, oracleResult(oracle))
}

type evidenceParams struct {
	Caller    string `json:"caller"`
	DisputeID uint64 `json:"disputeId"`
	Reference string `json:"reference"`
}

func (s *Server) handleSubmitEvidence(w http.ResponseWriter, req *RPCRequest) {
	var params evidenceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.disputes.SubmitEvidence(params.DisputeID, caller, params.Reference); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "recorded"})
}

type voteParams struct {
	Caller    string `json:"caller"`
	DisputeID uint64 `json:"disputeId"`
	Choice    string `json:"choice"`
}

func (s *Server) handleCastVote(w http.ResponseWriter, req *RPCRequest) {
	var params voteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	choice := dispute.Outcome(strings.ToLower(strings.TrimSpace(params.Choice)))
	if err := s.disputes.CastVote(params.DisputeID, caller, choice); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "voted"})
}

type disputeCallParams struct {
	DisputeID uint64 `json:"disputeId"`
}

func (s *Server) handleManualResolve(w http.ResponseWriter, req *RPCRequest) {
	var params disputeCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.disputes.ManualResolve(params.DisputeID); err != nil {
		writeEngineError(w, req, err)
		return
	}
	d, err := s.disputes.Get(params.DisputeID)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"outcome": d.Outcome.String()})
}

type cancelDisputeParams struct {
	Caller    string `json:"caller"`
	DisputeID uint64 `json:"disputeId"`
}

func (s *Server) handleDisputeCancel(w http.ResponseWriter, req *RPCRequest) {
	var params cancelDisputeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.disputes.Cancel(params.DisputeID, caller); err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"status": "cancelled"})
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, req *RPCRequest) {
	var params oracleCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := s.disputes.ClaimRewards(caller)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"claimed": amount.String()})
}

func (s *Server) handleDisputeGet(w http.ResponseWriter, req *RPCRequest) {
	var params disputeCallParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	d, err := s.disputes.Get(params.DisputeID)
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, disputeResult(d))
}

func (s *Server) handleDisputeParams(w http.ResponseWriter, req *RPCRequest) {
	params := s.disputes.Params()
	writeResult(w, req.ID, map[string]interface{}{
		"minStake":            params.MinStake.String(),
		"votingPeriodSeconds": params.VotingPeriodSeconds,
		"quorum":              params.Quorum,
		"rewardPerVote":       params.RewardPerVote.String(),
	})
}

func (s *Server) handleDisputeTotals(w http.ResponseWriter, req *RPCRequest) {
	staked, err := s.disputes.TotalStaked()
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	total, err := s.disputes.TotalDisputes()
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	resolved, err := s.disputes.ResolvedDisputes()
	if err != nil {
		writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"totalStaked":      staked.String(),
		"totalDisputes":    total,
		"resolvedDisputes": resolved,
	})
}

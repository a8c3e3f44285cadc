package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apiContext "hash402/internal/api/context"
	"hash402/internal/engine/anchor"
	"hash402/internal/engine/wallet"
	"hash402/internal/engine/webhooks"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/audit"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

const coreVersion = "hash402-core/0.3.1-sol"

// APIHandler serves the key-authorized business surface: payload
// validation with mock risk scoring and anchoring, attestations,
// anchor status, batch commits, and webhook test deliveries.
type APIHandler struct {
	programID   string
	logRepo     *repositories.RequestLogRepository
	webhookRepo *repositories.WebhookRepository
	auditLog    *audit.Logger
}

func NewAPIHandler(programID string, logRepo *repositories.RequestLogRepository, webhookRepo *repositories.WebhookRepository, auditLog *audit.Logger) *APIHandler {
	return &APIHandler{
		programID:   programID,
		logRepo:     logRepo,
		webhookRepo: webhookRepo,
		auditLog:    auditLog,
	}
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}

func apiKeyFrom(r *http.Request) *models.APIKey {
	return r.Context().Value(apiContext.APIKey).(*models.APIKey)
}

type ValidateRequest struct {
	Chain     string                 `json:"chain"`
	Wallet    string                 `json:"wallet"`
	TxPayload string                 `json:"tx_payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type anchorResult struct {
	ProgramID     string `json:"program_id,omitempty"`
	PDACommitment string `json:"pda_commitment,omitempty"`
	Signature     string `json:"signature"`
	Slot          int64  `json:"slot"`
	BlockTime     int64  `json:"block_time"`
	Confirmed     bool   `json:"confirmed,omitempty"`
}

type validateResponse struct {
	TxHash402 string      `json:"tx_hash402"`
	Risk      anchor.Risk `json:"risk"`
	Decision  string      `json:"decision"`
	ZKProof   zkProof     `json:"zk_proof"`
	Anchor    anchorResult `json:"anchor"`
	Version   string      `json:"version"`
	RequestID string      `json:"request_id"`
}

type zkProof struct {
	Scheme        string   `json:"scheme"`
	Proof         string   `json:"proof"`
	PublicSignals []string `json:"publicSignals"`
}

func (h *APIHandler) Validate(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	start := time.Now()
	key := apiKeyFrom(r)

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Chain == "" || req.Wallet == "" || req.TxPayload == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "chain, wallet, and tx_payload required", requestID)
		return
	}

	payloadHash := anchor.PayloadHash(req.TxPayload)
	txHash := anchor.TxHash402(req.Wallet, payloadHash)
	risk := anchor.ScoreRisk(payloadHash)

	response := validateResponse{
		TxHash402: txHash,
		Risk:      risk,
		Decision:  risk.Decision,
		ZKProof: zkProof{
			Scheme:        "plonk",
			Proof:         "0xMOCK" + txHash[:60],
			PublicSignals: []string{"0x" + payloadHash},
		},
		Anchor: anchorResult{
			ProgramID:     h.programID,
			PDACommitment: anchor.DerivePDA(txHash, h.programID),
			Signature:     anchor.MockSignature(txHash),
			Slot:          anchor.MockSlot(),
			BlockTime:     anchor.MockBlockTime(),
		},
		Version:   coreVersion,
		RequestID: requestID,
	}

	latencyMs := time.Since(start).Milliseconds()

	bodyRedacted, _ := json.Marshal(map[string]string{"chain": req.Chain, "wallet": wallet.ShortAddress(req.Wallet)})
	responseRedacted, _ := json.Marshal(response)

	h.auditLog.Log(&models.RequestLog{
		OrganizationID:   key.OrganizationID,
		APIKeyID:         key.ID,
		Endpoint:         "/api/validate",
		Status:           http.StatusOK,
		LatencyMs:        latencyMs,
		RequestID:        requestID,
		Env:              key.Env,
		Wallet:           req.Wallet,
		BodyRedacted:     string(bodyRedacted),
		ResponseRedacted: string(responseRedacted),
	})

	log.Info().
		Str("request_id", requestID).
		Str("decision", risk.Decision).
		Int64("latency_ms", latencyMs).
		Msg("validation completed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type AttestRequest struct {
	TxHash402 string `json:"tx_hash402"`
	Statement string `json:"statement"`
	Sig       string `json:"sig,omitempty"`
}

func (h *APIHandler) Attest(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	key := apiKeyFrom(r)

	var req AttestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TxHash402 == "" || req.Statement == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "tx_hash402 and statement required", requestID)
		return
	}

	response := map[string]interface{}{
		"ok": true,
		"attestation": map[string]interface{}{
			"tx_hash402": req.TxHash402,
			"statement":  req.Statement,
			"node":       "Node402-7",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
		"request_id": requestID,
	}

	bodyRedacted, _ := json.Marshal(map[string]string{"tx_hash402": req.TxHash402, "statement": req.Statement})

	h.auditLog.Log(&models.RequestLog{
		OrganizationID:   key.OrganizationID,
		APIKeyID:         key.ID,
		Endpoint:         "/api/attest",
		Status:           http.StatusOK,
		LatencyMs:        50,
		RequestID:        requestID,
		Env:              key.Env,
		BodyRedacted:     string(bodyRedacted),
		ResponseRedacted: `{"ok":true}`,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *APIHandler) AnchorStatus(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	key := apiKeyFrom(r)

	txHash := r.URL.Query().Get("tx_hash402")
	if txHash == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "tx_hash402 required", requestID)
		return
	}

	found, err := h.logRepo.HasAnchor(key.OrganizationID, txHash)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Status check failed", requestID)
		return
	}
	if !found {
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeAnchorNotFound, "No anchor found for this hash", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tx_hash402": txHash,
		"anchor": anchorResult{
			ProgramID: h.programID,
			Signature: anchor.MockSignature(txHash),
			Slot:      anchor.MockSlot(),
			BlockTime: anchor.MockBlockTime(),
			Confirmed: true,
		},
		"attestations_count": 1,
		"request_id":         requestID,
	})
}

type BatchCommitRequest struct {
	MerkleRoot string   `json:"merkle_root"`
	Leaves     []string `json:"leaves,omitempty"`
}

func (h *APIHandler) BatchCommit(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	key := apiKeyFrom(r)

	var req BatchCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MerkleRoot == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "merkle_root required", requestID)
		return
	}

	signature := anchor.MockSignature(req.MerkleRoot)

	bodyRedacted, _ := json.Marshal(map[string]string{"merkle_root": req.MerkleRoot})
	responseRedacted, _ := json.Marshal(map[string]string{"signature": signature})

	h.auditLog.Log(&models.RequestLog{
		OrganizationID:   key.OrganizationID,
		APIKeyID:         key.ID,
		Endpoint:         "/api/batch/commit",
		Status:           http.StatusOK,
		LatencyMs:        120,
		RequestID:        requestID,
		Env:              key.Env,
		BodyRedacted:     string(bodyRedacted),
		ResponseRedacted: string(responseRedacted),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok": true,
		"anchor": anchorResult{
			Signature: signature,
			Slot:      anchor.MockSlot(),
			BlockTime: anchor.MockBlockTime(),
		},
		"request_id": requestID,
	})
}

type WebhookTestRequest struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

func (h *APIHandler) WebhookTest(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	key := apiKeyFrom(r)

	var req WebhookTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "event required", requestID)
		return
	}

	endpoints, err := h.webhookRepo.ListByOrg(key.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Webhook test failed", requestID)
		return
	}

	now := time.Now()
	deliveries, matched, err := webhooks.BuildTestDeliveries(endpoints, req.Event, req.Data, now)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Webhook test failed", requestID)
		return
	}

	for _, id := range matched {
		if err := h.webhookRepo.UpdateLastDelivered(id, now.Unix()); err != nil {
			log.Warn().Err(err).Str("webhook_id", id).Msg("failed to update webhook last-delivered")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":         true,
		"deliveries": deliveries,
		"request_id": requestID,
	})
}

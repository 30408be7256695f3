package httpadmin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	adminguard "github.com/hexbyte/adminguard"
	"github.com/hexbyte/adminguard/middleware"
)

const maxBodyBytes = 64 << 10

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTP     string `json:"totp,omitempty"`
}

type loginResponse struct {
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`

	Error             string `json:"error,omitempty"`
	TOTPRequired      bool   `json:"totpRequired,omitempty"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
	RetryAfter        int    `json:"retryAfter,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{Error: "malformed request"})
		return
	}

	ctx := adminguard.WithClientIP(r.Context(), middleware.ClientIP(r))
	result, err := s.engine.Login(ctx, adminguard.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		TOTPCode: req.TOTP,
	})
	if err == nil {
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     result.Token,
			ExpiresIn: result.ExpiresIn,
		})
		return
	}

	switch {
	case errors.Is(err, adminguard.ErrMalformedInput):
		writeJSON(w, http.StatusBadRequest, loginResponse{Error: "malformed request"})
	case errors.Is(err, adminguard.ErrBlocked):
		writeJSON(w, http.StatusForbidden, loginResponse{Error: "forbidden"})
	case errors.Is(err, adminguard.ErrLoginRateLimited):
		retryAfter := 1
		if result != nil && result.RetryAfter > 0 {
			retryAfter = int(result.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, loginResponse{
			Error:      "too many attempts",
			RetryAfter: retryAfter,
		})
	case errors.Is(err, adminguard.ErrTOTPRequired):
		writeJSON(w, http.StatusUnauthorized, loginResponse{
			Error:        "TOTP code required",
			TOTPRequired: true,
		})
	case errors.Is(err, adminguard.ErrInvalidCredentials), errors.Is(err, adminguard.ErrTOTPInvalid):
		resp := loginResponse{Error: "invalid credentials"}
		if result != nil {
			remaining := result.RemainingAttempts
			resp.RemainingAttempts = &remaining
		}
		writeJSON(w, http.StatusUnauthorized, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, loginResponse{Error: "internal error"})
	}
}

type blockRequest struct {
	ActorKeyHash string `json:"actorKeyHash"`
	Reason       string `json:"reason"`
	TTLHours     int    `json:"ttlHours,omitempty"` // 0 = permanent
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ActorKeyHash == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}

	ctx := adminguard.WithClientIP(r.Context(), middleware.ClientIP(r))
	err := s.engine.BlockActor(ctx, req.ActorKeyHash, req.Reason, time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}

	ctx := adminguard.WithClientIP(r.Context(), middleware.ClientIP(r))
	if err := s.engine.UnblockActor(ctx, key); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unblocked"})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.engine.ListBlocks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if blocks == nil {
		blocks = []adminguard.BlockInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := s.engine.RecentEvents(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []adminguard.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// handleIngest accepts the generic event payload and acknowledges it. Raw
// event persistence belongs to the analytics collaborator, not this
// subsystem; the endpoint exists here so ingestion traffic passes through
// the silent limiter before touching anything else.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxBodyBytes))
	w.WriteHeader(http.StatusAccepted)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, adminguard.ErrMalformedInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}
	if errors.Is(err, adminguard.ErrStoreUnavailable) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

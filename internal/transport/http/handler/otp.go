package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mbuddy-api/internal/application/otp"
	"github.com/mbuddy-api/internal/domain"
	"github.com/mbuddy-api/internal/pkg/validate"
)

// rejectedMsg deliberately does not say whether the email has any codes at
// all, to avoid leaking which addresses are mid-signup.
const rejectedMsg = "invalid or expired code"

// OTPHandler handles verification-code issuance and validation endpoints.
type OTPHandler struct {
	svc           otp.Service
	resendAllowed bool
}

func NewOTPHandler(svc otp.Service, resendAllowed bool) *OTPHandler {
	return &OTPHandler{svc: svc, resendAllowed: resendAllowed}
}

func (h *OTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.Issue(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrNotification) {
			// The code was stored; only delivery failed. The caller should
			// surface that the email may not arrive and offer a resend.
			writeError(w, http.StatusBadGateway, "verification code stored but email delivery failed; request a new code")
			return
		}
		slog.Error("otp issuance failed", "email", req.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "could not issue verification code")
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "verification code sent"})
}

func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request) {
	if !h.resendAllowed {
		writeError(w, http.StatusForbidden, "resend is disabled")
		return
	}
	// A resend is a fresh issuance: it produces a new record and supersedes
	// every earlier code for the address.
	h.Issue(w, r)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Verify(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoRecord),
			errors.Is(err, domain.ErrCodeExpired),
			errors.Is(err, domain.ErrCodeMismatch):
			slog.Info("otp verification rejected", "email", req.Email, "reason", err)
			writeError(w, http.StatusUnauthorized, rejectedMsg)
		default:
			slog.Error("otp verification failed", "email", req.Email, "err", err)
			writeError(w, http.StatusInternalServerError, "could not verify code")
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}

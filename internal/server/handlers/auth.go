// Package handlers exposes the auth, profile, geocode, and health endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/auth"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/devotp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/otp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/profile"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server/respond"
	otelx "github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/telemetry/otel"
)

// AuthHandler owns the /api/auth endpoints: the two-step login and
// registration flows, password and google login, session inspection, profile
// updates, and the dev OTP surface.
type AuthHandler struct {
	flows    *FlowRegistry
	profiles *profile.Service
	devCodes devotp.Store // nil unless dev OTP mode
	events   otelx.AuthEventEmitter
	tracer   trace.Tracer
	attempts metric.Int64Counter
}

// NewAuthHandler constructs the handler. devCodes nil disables the dev OTP
// surface; events nil disables event emission.
func NewAuthHandler(flows *FlowRegistry, profiles *profile.Service, devCodes devotp.Store, events otelx.AuthEventEmitter) *AuthHandler {
	h := &AuthHandler{
		flows:    flows,
		profiles: profiles,
		devCodes: devCodes,
		events:   events,
		tracer:   otel.Tracer("krishi/server"),
	}
	attempts, err := otel.Meter("krishi/server").Int64Counter(
		"auth_attempts_total",
		metric.WithDescription("auth flow operations by action and outcome"),
	)
	if err != nil {
		log.Printf("handlers: auth_attempts_total counter: %v", err)
	} else {
		h.attempts = attempts
	}
	return h
}

// Register attaches the auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/login/initiate", post(h.handleLoginInitiate))
	mux.HandleFunc("/api/auth/login/complete", post(h.handleLoginComplete))
	mux.HandleFunc("/api/auth/login/password", post(h.handlePasswordLogin))
	mux.HandleFunc("/api/auth/register/initiate", post(h.handleRegisterInitiate))
	mux.HandleFunc("/api/auth/register/complete", post(h.handleRegisterComplete))
	mux.HandleFunc("/api/auth/google", post(h.handleGoogleLogin))
	mux.HandleFunc("/api/auth/mode", post(h.handleSwitchMode))
	mux.HandleFunc("/api/auth/back", post(h.handleBack))
	mux.HandleFunc("/api/auth/logout", post(h.handleLogout))
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/auth/profile", h.handleProfile)
	if h.devCodes != nil {
		mux.HandleFunc("/api/dev/otp", h.handleDevOTP)
	}
}

func post(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

type initiateLoginRequest struct {
	FlowID     string `json:"flow_id"`
	Identifier string `json:"identifier"`
}

type completeLoginRequest struct {
	FlowID     string `json:"flow_id"`
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type registerInitiateRequest struct {
	FlowID string `json:"flow_id"`
	auth.RegistrationForm
}

type registerCompleteRequest struct {
	FlowID string `json:"flow_id"`
	Code   string `json:"code"`
	auth.RegistrationForm
}

type passwordLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type googleLoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type modeRequest struct {
	FlowID string `json:"flow_id"`
	Mode   string `json:"mode"`
}

type flowRequest struct {
	FlowID string `json:"flow_id"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func (h *AuthHandler) handleLoginInitiate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.login.initiate")
	defer span.End()
	var req initiateLoginRequest
	if !decode(w, r, &req) {
		return
	}
	key := flowKey(req.FlowID, req.Identifier)
	c, err := h.flows.Get(key).InitiateLogin(ctx, req.Identifier)
	h.record(ctx, "login_initiate", req.Identifier, "", err)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	h.keepDevCode(ctx, c.Identifier, c.Code, c.ExpiresAt)
	respond.JSON(w, http.StatusOK, "OTP sent", h.challengeBody(key, c))
}

func (h *AuthHandler) handleRegisterInitiate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.register.initiate")
	defer span.End()
	var req registerInitiateRequest
	if !decode(w, r, &req) {
		return
	}
	key := flowKey(req.FlowID, req.Phone)
	c, err := h.flows.Get(key).InitiateRegistration(ctx, req.RegistrationForm)
	h.record(ctx, "register_initiate", req.Phone, "", err)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	h.keepDevCode(ctx, c.Identifier, c.Code, c.ExpiresAt)
	respond.JSON(w, http.StatusOK, "OTP sent", h.challengeBody(key, c))
}

func (h *AuthHandler) handleLoginComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.login.complete")
	defer span.End()
	var req completeLoginRequest
	if !decode(w, r, &req) {
		return
	}
	key := flowKey(req.FlowID, req.Identifier)
	u, err := h.flows.Get(key).CompleteLogin(ctx, req.Identifier, req.Code)
	if err != nil {
		h.record(ctx, "login", req.Identifier, "", err)
		writeFlowError(w, err)
		return
	}
	h.record(ctx, "login", req.Identifier, u.ID, nil)
	respond.JSON(w, http.StatusOK, "login successful", u)
}

func (h *AuthHandler) handleRegisterComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.register.complete")
	defer span.End()
	var req registerCompleteRequest
	if !decode(w, r, &req) {
		return
	}
	key := flowKey(req.FlowID, req.Phone)
	u, err := h.flows.Get(key).CompleteRegistration(ctx, req.RegistrationForm, req.Code)
	if err != nil {
		h.record(ctx, "register", req.Phone, "", err)
		writeFlowError(w, err)
		return
	}
	h.record(ctx, "register", req.Phone, u.ID, nil)
	respond.JSON(w, http.StatusOK, "registration successful", u)
}

func (h *AuthHandler) handlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.login.password")
	defer span.End()
	var req passwordLoginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.flows.Get(flowKey("", req.Identifier)).PasswordLogin(ctx, req.Identifier, req.Password)
	if err != nil {
		h.record(ctx, "password_login", req.Identifier, "", err)
		writeFlowError(w, err)
		return
	}
	h.record(ctx, "password_login", req.Identifier, u.ID, nil)
	respond.JSON(w, http.StatusOK, "login successful", u)
}

func (h *AuthHandler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.login.google")
	defer span.End()
	var req googleLoginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.flows.Get("default").GoogleLogin(ctx, req.Name, req.Email)
	if err != nil {
		h.record(ctx, "google_login", req.Email, "", err)
		respond.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.record(ctx, "google_login", req.Email, u.ID, nil)
	respond.JSON(w, http.StatusOK, "login successful", u)
}

func (h *AuthHandler) handleSwitchMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decode(w, r, &req) {
		return
	}
	m := auth.Mode(req.Mode)
	if m != auth.ModeLogin && m != auth.ModeRegister {
		respond.Error(w, http.StatusBadRequest, "mode must be LOGIN or REGISTER")
		return
	}
	f := h.flows.Get(flowKey(req.FlowID, ""))
	f.SwitchMode(m)
	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"step": string(f.Step()),
		"mode": string(f.Mode()),
	})
}

func (h *AuthHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	var req flowRequest
	if !decode(w, r, &req) {
		return
	}
	f := h.flows.Get(flowKey(req.FlowID, ""))
	f.Back()
	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"step": string(f.Step()),
		"mode": string(f.Mode()),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "auth.logout")
	defer span.End()
	if err := h.flows.Get("default").Logout(ctx); err != nil {
		log.Printf("logout: %v", err)
		respond.Error(w, http.StatusInternalServerError, "logout failed")
		return
	}
	h.record(ctx, "logout", "", "", nil)
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	u, err := h.flows.Get("default").CurrentUser(r.Context())
	if err != nil {
		log.Printf("current user: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to read session")
		return
	}
	if u == nil {
		respond.JSON(w, http.StatusOK, "no active session", nil)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", u)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, span := h.tracer.Start(r.Context(), "auth.profile.update")
	defer span.End()
	var patch profile.Patch
	if !decode(w, r, &patch) {
		return
	}
	u, err := h.profiles.Update(ctx, patch)
	if err != nil {
		if errors.Is(err, profile.ErrNotLoggedIn) {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("profile update: %v", err)
		respond.Error(w, http.StatusInternalServerError, "profile update failed")
		return
	}
	respond.JSON(w, http.StatusOK, "profile updated", u)
}

// handleDevOTP serves the last issued code for an identifier. Registered only
// in dev OTP mode.
func (h *AuthHandler) handleDevOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		respond.Error(w, http.StatusBadRequest, "identifier is required")
		return
	}
	code, ok := h.devCodes.Get(r.Context(), identifier)
	if !ok {
		respond.Error(w, http.StatusNotFound, "no code issued for identifier")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"identifier": identifier,
		"otp":        code,
	})
}

// challengeBody builds the initiate response. The code is included only in
// dev OTP mode.
func (h *AuthHandler) challengeBody(key string, c *otp.Challenge) map[string]any {
	body := map[string]any{
		"flow_id": key,
		"step":    string(auth.StepOTP),
	}
	if !c.ExpiresAt.IsZero() {
		body["expires_at"] = c.ExpiresAt
	}
	if h.devCodes != nil {
		body["otp"] = c.Code
	}
	return body
}

func (h *AuthHandler) keepDevCode(ctx context.Context, identifier, code string, expiresAt time.Time) {
	if h.devCodes != nil {
		h.devCodes.Put(ctx, identifier, code, expiresAt)
	}
}

// record bumps the attempt counter and emits an auth event.
func (h *AuthHandler) record(ctx context.Context, action, identifier, userID string, err error) {
	outcome := outcomeOf(err)
	if h.attempts != nil {
		h.attempts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		))
	}
	if h.events != nil {
		h.events.Emit(ctx, otelx.AuthEvent{
			Action:     action,
			Outcome:    outcome,
			UserID:     userID,
			Identifier: identifier,
		})
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, auth.ErrIdentifierRequired), errors.Is(err, auth.ErrFieldsRequired):
		return "invalid_input"
	case errors.Is(err, auth.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, auth.ErrPhoneRegistered):
		return "conflict"
	case errors.Is(err, auth.ErrChallengeExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, auth.ErrIncorrectPassword):
		return "bad_password"
	default:
		return "error"
	}
}

// writeFlowError maps flow errors to HTTP statuses; the error text is the
// user-facing message and passes through verbatim.
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrIdentifierRequired), errors.Is(err, auth.ErrFieldsRequired):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAccountNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrPhoneRegistered):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrChallengeExpired):
		respond.Error(w, http.StatusGone, err.Error())
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrIncorrectPassword):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("auth flow: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

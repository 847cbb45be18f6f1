// Package auth drives the two-step login and registration flows: collect
// input, issue a one-time code, verify it, finalize the session. One Flow
// instance serves one client-side auth attempt at a time.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/directory"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/otp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/security"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/session"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

// Step is the flow's position: collecting input or awaiting a code.
type Step string

const (
	StepInput Step = "INPUT"
	StepOTP   Step = "OTP"
)

// Mode selects login vs. registration. Orthogonal to Step.
type Mode string

const (
	ModeLogin    Mode = "LOGIN"
	ModeRegister Mode = "REGISTER"
)

// RegistrationForm carries the fields collected before a registration
// challenge is issued. Name, Phone, and Location are required; Password is
// optional (OTP-only accounts have none).
type RegistrationForm struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
	State    string `json:"state"`
	Password string `json:"password"`
}

// Flow is the session lifecycle manager. The pending challenge is an explicit
// field, so "at most one live challenge" holds by construction: issuing a new
// one overwrites it, Back and successful verification discard it.
type Flow struct {
	directory *directory.Directory
	sessions  *session.Store
	sender    otp.Sender
	tokens    *security.TokenProvider
	hasher    *security.Hasher
	codeTTL   time.Duration
	nowF      func() time.Time

	mu      sync.Mutex
	mode    Mode
	step    Step
	pending *otp.Challenge
}

// NewFlow returns a Flow at the input step in login mode.
// codeTTL zero disables challenge expiry.
func NewFlow(
	dir *directory.Directory,
	sessions *session.Store,
	sender otp.Sender,
	tokens *security.TokenProvider,
	hasher *security.Hasher,
	codeTTL time.Duration,
) *Flow {
	return &Flow{
		directory: dir,
		sessions:  sessions,
		sender:    sender,
		tokens:    tokens,
		hasher:    hasher,
		codeTTL:   codeTTL,
		nowF:      func() time.Time { return time.Now().UTC() },
		mode:      ModeLogin,
		step:      StepInput,
	}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Mode returns the current mode.
func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// SwitchMode selects login or registration. Only legal at the input step;
// a no-op while a challenge is pending.
func (f *Flow) SwitchMode(m Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepInput {
		return
	}
	f.mode = m
}

// Back returns from the OTP step to input and discards the pending challenge.
// No-op when already at input.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepInput
	f.pending = nil
}

// InitiateLogin checks the identifier against the directory and issues a
// challenge for it. The returned challenge carries the code so a simulated-SMS
// surface can display it; that exposure is a deliberate artifact of the
// simulated delivery channel.
func (f *Flow) InitiateLogin(ctx context.Context, identifier string) (*otp.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(identifier) == "" {
		return nil, ErrIdentifierRequired
	}
	rec, err := f.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAccountNotFound
	}
	return f.issue(ctx, identifier, ModeLogin)
}

// InitiateRegistration validates the form, rejects an already-registered
// phone, and issues a challenge for the phone.
func (f *Flow) InitiateRegistration(ctx context.Context, form RegistrationForm) (*otp.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Phone) == "" || strings.TrimSpace(form.Location) == "" {
		return nil, ErrFieldsRequired
	}
	existing, err := f.directory.FindByIdentifier(ctx, form.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneRegistered
	}
	return f.issue(ctx, form.Phone, ModeRegister)
}

// issue creates the challenge, simulates delivery, and moves to the OTP step.
// Replaces any previous challenge. Caller holds f.mu.
func (f *Flow) issue(ctx context.Context, identifier string, mode Mode) (*otp.Challenge, error) {
	c, err := otp.NewChallenge(identifier, f.codeTTL, f.nowF())
	if err != nil {
		return nil, err
	}
	if err := f.sender.Send(ctx, identifier, c.Code); err != nil {
		return nil, err
	}
	f.pending = c
	f.mode = mode
	f.step = StepOTP
	return c, nil
}

// CompleteLogin verifies the entered code against the pending challenge,
// re-resolves the user, and finalizes the session.
func (f *Flow) CompleteLogin(ctx context.Context, identifier, code string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkCode(code); err != nil {
		return nil, err
	}
	// Re-resolve between check and use; a vanished entry fails this attempt.
	rec, err := f.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAccountNotFound
	}
	if err := f.finalize(ctx, rec.User); err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// CompleteRegistration verifies the entered code, synthesizes the new user,
// persists the directory entry (keyed by phone, email fallback), and
// finalizes the session.
func (f *Flow) CompleteRegistration(ctx context.Context, form RegistrationForm, code string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkCode(code); err != nil {
		return nil, err
	}
	u := domain.User{
		ID:         uuid.New().String(),
		Name:       form.Name,
		Phone:      form.Phone,
		Email:      form.Email,
		Location:   form.Location,
		State:      form.State,
		JoinedDate: f.nowF(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	rec := directory.Record{User: u}
	if form.Password != "" {
		hash, err := f.hasher.Hash(form.Password)
		if err != nil {
			return nil, err
		}
		rec.PasswordHash = hash
	}
	if err := f.directory.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := f.finalize(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// checkCode validates the pending challenge. ErrInvalidCode keeps the
// challenge so the farmer can retry without re-requesting a code. Caller
// holds f.mu.
func (f *Flow) checkCode(entered string) error {
	if f.pending == nil {
		return ErrChallengeExpired
	}
	if f.pending.Expired(f.nowF()) {
		f.pending = nil
		f.step = StepInput
		return ErrChallengeExpired
	}
	if !otp.Verify(entered, f.pending.Code) {
		return ErrInvalidCode
	}
	return nil
}

// finalize persists the session and bearer token and resets the flow.
// Caller holds f.mu.
func (f *Flow) finalize(ctx context.Context, u domain.User) error {
	if err := f.sessions.Set(ctx, u); err != nil {
		return err
	}
	token, _, err := f.tokens.Issue(u.ID, u.Name, u.Phone)
	if err != nil {
		return err
	}
	if err := f.sessions.SetToken(ctx, token); err != nil {
		return err
	}
	f.pending = nil
	f.step = StepInput
	return nil
}

// PasswordLogin authenticates with a stored password hash, skipping the OTP
// step. OTP-only accounts (no hash) cannot log in this way.
func (f *Flow) PasswordLogin(ctx context.Context, identifier, password string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(identifier) == "" {
		return nil, ErrIdentifierRequired
	}
	rec, err := f.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAccountNotFound
	}
	if rec.PasswordHash == "" {
		return nil, ErrIncorrectPassword
	}
	if err := f.hasher.Compare(rec.PasswordHash, password); err != nil {
		return nil, ErrIncorrectPassword
	}
	if err := f.finalize(ctx, rec.User); err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// GoogleLogin creates an ephemeral session that bypasses the directory.
// It always succeeds; the resulting session user has no directory entry.
func (f *Flow) GoogleLogin(ctx context.Context, name, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "" {
		name = "Farmer"
	}
	u := domain.User{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      email,
		JoinedDate: f.nowF(),
	}
	if err := f.finalize(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout clears the persisted session and token. Idempotent.
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions.Clear(ctx)
}

// CurrentUser returns the persisted session user, or nil when logged out.
func (f *Flow) CurrentUser(ctx context.Context) (*domain.User, error) {
	return f.sessions.Current(ctx)
}

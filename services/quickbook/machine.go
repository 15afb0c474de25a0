package quickbook

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a step of the quick-book flow.
type State string

const (
	StateSelectService  State = "SELECT_SERVICE"
	StateCollectContact State = "COLLECT_CONTACT"
	StateReadyToBook    State = "READY_TO_BOOK"
	StateDone           State = "DONE"
)

// ErrInvalidTransition is returned when an action does not apply to the current state.
var ErrInvalidTransition = errors.New("quickbook: action not allowed in current state")

// ErrOpenBlocked is what an Opener returns when the environment refused to
// open the target, e.g. a popup blocker.
var ErrOpenBlocked = errors.New("quickbook: open was blocked")

// Opener shows the outcome of a booking to the visitor.
type Opener interface {
	OpenExternal(ctx context.Context, url string) error
	OpenConfirmation(ctx context.Context, intentID string) error
}

// InlineError is the dismissible error shown next to the form.
type InlineError struct {
	Message string
	// Fields holds per-field validation tags, e.g. {"Phone": "required_without"}.
	Fields map[string]string
	// Retryable is true when the same action can simply be tried again.
	Retryable bool
}

// ValidationError is returned when the contact form fails local validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		keys = append(keys, k+"="+v)
	}
	sort.Strings(keys)
	return "quickbook: invalid contact: " + strings.Join(keys, ", ")
}

var validate = validator.New()

// ValidateContact checks a name plus at least one channel. A nil map means valid.
func ValidateContact(c Contact) map[string]string {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"Contact": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// Machine is the widget side of the quick-book flow. Every server call that
// fails leaves the machine in its pre-call state with entered data kept.
type Machine struct {
	mu sync.Mutex

	api       API
	opener    Opener
	sessionID string
	logger    *zap.Logger

	state     State
	service   *Service
	intentID  string
	contact   Contact
	leadID    string
	result    *ClickResponse
	opened    bool
	completed bool
	err       *InlineError
}

// NewMachine starts a machine in SELECT_SERVICE. An empty sessionID gets a
// random one.
func NewMachine(api API, opener Opener, sessionID string, logger *zap.Logger) *Machine {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{api: api, opener: opener, sessionID: sessionID, logger: logger, state: StateSelectService}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) IntentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intentID
}

func (m *Machine) LeadID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leadID
}

// Contact returns the last contact entered, submitted or not.
func (m *Machine) Contact() Contact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contact
}

func (m *Machine) Result() *ClickResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Opened reports whether the booking target was shown successfully.
func (m *Machine) Opened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Completed reports whether the server acknowledged the handoff as done.
func (m *Machine) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}

// Err returns the current inline error, if any.
func (m *Machine) Err() *InlineError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// DismissError clears the inline error without changing state.
func (m *Machine) DismissError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = nil
}

// SelectService opens an intent for svc and moves to COLLECT_CONTACT.
func (m *Machine) SelectService(ctx context.Context, svc Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateSelectService {
		return ErrInvalidTransition
	}
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		m.err = &InlineError{Message: "Please pick a service.", Fields: map[string]string{"Name": "required"}}
		return &ValidationError{Fields: map[string]string{"Name": "required"}}
	}

	intentID, err := m.api.StartIntent(ctx, m.sessionID, svc)
	if err != nil {
		m.err = serverError(err, "We couldn't start your booking. Please try again.")
		return err
	}

	m.service = &svc
	m.intentID = intentID
	m.state = StateCollectContact
	m.err = nil
	return nil
}

// SubmitContact validates c locally, then attaches it to the intent and
// moves to READY_TO_BOOK. Invalid input never reaches the server.
func (m *Machine) SubmitContact(ctx context.Context, c Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCollectContact {
		return ErrInvalidTransition
	}
	c = Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
	m.contact = c

	if fields := ValidateContact(c); fields != nil {
		m.err = &InlineError{Message: "Please enter your name and a phone number or email.", Fields: fields}
		return &ValidationError{Fields: fields}
	}

	leadID, err := m.api.AttachContact(ctx, m.intentID, c)
	if err != nil {
		m.err = serverError(err, "We couldn't save your details. Please try again.")
		return err
	}

	m.leadID = leadID
	m.state = StateReadyToBook
	m.err = nil
	return nil
}

// BookNow records the booking and moves to DONE, then opens the result.
// Calling it again in DONE returns the recorded result without a server call.
func (m *Machine) BookNow(ctx context.Context) (*ClickResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDone {
		return m.result, nil
	}
	if m.state != StateReadyToBook {
		return nil, ErrInvalidTransition
	}

	res, err := m.api.Click(ctx, m.intentID)
	if err != nil {
		m.err = serverError(err, "We couldn't complete your booking. Please try again.")
		return nil, err
	}

	m.result = res
	m.state = StateDone
	m.err = nil
	m.open(ctx)
	return res, nil
}

// RetryOpen shows the booking target again, for when the first attempt was
// blocked. A completion that failed earlier is sent again.
func (m *Machine) RetryOpen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDone {
		return ErrInvalidTransition
	}
	m.err = nil
	if !m.open(ctx) {
		return ErrOpenBlocked
	}
	return nil
}

// Reset returns to SELECT_SERVICE and forgets the intent locally. The server
// record is left as it is.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateSelectService
	m.service = nil
	m.intentID = ""
	m.contact = Contact{}
	m.leadID = ""
	m.result = nil
	m.opened = false
	m.completed = false
	m.err = nil
}

// open must be called with mu held.
func (m *Machine) open(ctx context.Context) bool {
	if m.opener == nil {
		return false
	}

	var err error
	if m.result.IsExternal() {
		err = m.opener.OpenExternal(ctx, m.result.URL)
	} else {
		err = m.opener.OpenConfirmation(ctx, m.intentID)
	}
	if err != nil {
		m.opened = false
		m.err = &InlineError{Message: "Your booking is saved. Tap to open it again.", Retryable: true}
		return false
	}

	m.opened = true
	if !m.completed {
		m.complete(ctx)
	}
	return true
}

// complete must be called with mu held. The visitor has already been handed
// off, so a failure is logged and retried on the next open.
func (m *Machine) complete(ctx context.Context) {
	if err := m.api.Complete(ctx, m.intentID); err != nil {
		m.logger.Warn("quickbook: failed to mark intent complete",
			zap.String("intentId", m.intentID), zap.Error(err))
		return
	}
	m.completed = true
}

func serverError(err error, fallback string) *InlineError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		ie := &InlineError{Message: fallback, Retryable: apiErr.StatusCode >= 500 || apiErr.StatusCode == 429}
		if apiErr.Code == "CONTACT_REQUIRED" {
			ie.Message = apiErr.Message
			ie.Fields = map[string]string{"Contact": "required"}
		}
		return ie
	}
	return &InlineError{Message: fallback, Retryable: true}
}

package quickbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) StartIntent(ctx context.Context, sessionID string, svc Service) (string, error) {
	args := m.Called(ctx, sessionID, svc)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) AttachContact(ctx context.Context, intentID string, c Contact) (string, error) {
	args := m.Called(ctx, intentID, c)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) Click(ctx context.Context, intentID string) (*ClickResponse, error) {
	args := m.Called(ctx, intentID)
	res, _ := args.Get(0).(*ClickResponse)
	return res, args.Error(1)
}

func (m *mockAPI) Complete(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

type recordingOpener struct {
	external     []string
	confirmation []string
	err          error
}

func (o *recordingOpener) OpenExternal(_ context.Context, url string) error {
	if o.err != nil {
		return o.err
	}
	o.external = append(o.external, url)
	return nil
}

func (o *recordingOpener) OpenConfirmation(_ context.Context, intentID string) error {
	if o.err != nil {
		return o.err
	}
	o.confirmation = append(o.confirmation, intentID)
	return nil
}

var haircut = Service{Name: "Haircut", PriceCents: func() *int64 { c := int64(3500); return &c }()}

var errNetwork = errors.New("dial tcp: connection refused")

func TestMachine_InternalFlow(t *testing.T) {
	api := &mockAPI{}
	opener := &recordingOpener{}
	m := NewMachine(api, opener, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, "sess-1", haircut).Return("abc", nil).Once()
	api.On("AttachContact", mock.Anything, "abc", Contact{Name: "Sam", Phone: "5551112222"}).Return("lead-1", nil).Once()
	api.On("Click", mock.Anything, "abc").Return(&ClickResponse{Handling: "internal", RedirectType: "demo"}, nil).Once()
	api.On("Complete", mock.Anything, "abc").Return(nil).Once()

	assert.Equal(t, StateSelectService, m.State())
	require.NoError(t, m.SelectService(ctx, haircut))
	assert.Equal(t, StateCollectContact, m.State())
	assert.Equal(t, "abc", m.IntentID())

	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "5551112222"}))
	assert.Equal(t, StateReadyToBook, m.State())
	assert.Equal(t, "lead-1", m.LeadID())

	res, err := m.BookNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateDone, m.State())
	assert.Equal(t, "demo", res.RedirectType)
	assert.Equal(t, []string{"abc"}, opener.confirmation)
	assert.Empty(t, opener.external)
	assert.True(t, m.Opened())

	again, err := m.BookNow(ctx)
	require.NoError(t, err)
	assert.Same(t, res, again)

	api.AssertExpectations(t)
}

func TestMachine_ExternalFlowOpensURL(t *testing.T) {
	api := &mockAPI{}
	opener := &recordingOpener{}
	m := NewMachine(api, opener, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	api.On("AttachContact", mock.Anything, "abc", mock.Anything).Return("lead-1", nil)
	api.On("Click", mock.Anything, "abc").Return(&ClickResponse{
		Handling: "external", URL: "https://calendly.com/x", RedirectType: "external",
	}, nil)
	api.On("Complete", mock.Anything, "abc").Return(nil)

	require.NoError(t, m.SelectService(ctx, haircut))
	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "5551112222"}))
	_, err := m.BookNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://calendly.com/x"}, opener.external)
}

func TestMachine_FailedStartStaysInSelectService(t *testing.T) {
	api := &mockAPI{}
	m := NewMachine(api, nil, "sess-1", nil)

	api.On("StartIntent", mock.Anything, "sess-1", haircut).Return("", errNetwork).Once()
	err := m.SelectService(context.Background(), haircut)
	require.ErrorIs(t, err, errNetwork)

	assert.Equal(t, StateSelectService, m.State())
	assert.Empty(t, m.IntentID())
	require.NotNil(t, m.Err())
	assert.True(t, m.Err().Retryable)

	m.DismissError()
	assert.Nil(t, m.Err())

	api.On("StartIntent", mock.Anything, "sess-1", haircut).Return("abc", nil).Once()
	require.NoError(t, m.SelectService(context.Background(), haircut))
	assert.Equal(t, StateCollectContact, m.State())
}

func TestMachine_ContactValidatedLocally(t *testing.T) {
	api := &mockAPI{}
	m := NewMachine(api, nil, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	require.NoError(t, m.SelectService(ctx, haircut))

	err := m.SubmitContact(ctx, Contact{Name: "Jane", Phone: "", Email: ""})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Phone")
	assert.Equal(t, StateCollectContact, m.State())
	assert.Equal(t, "Jane", m.Contact().Name, "entered data is kept")
	api.AssertNotCalled(t, "AttachContact", mock.Anything, mock.Anything, mock.Anything)

	err = m.SubmitContact(ctx, Contact{Name: "  ", Email: "jane@example.com"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Name")

	api.On("AttachContact", mock.Anything, "abc", Contact{Name: "Jane", Phone: "5551234567"}).Return("lead-1", nil).Once()
	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Jane", Phone: "5551234567", Email: ""}))
	assert.Equal(t, StateReadyToBook, m.State())
}

func TestValidateContact(t *testing.T) {
	assert.Nil(t, ValidateContact(Contact{Name: "Jane", Phone: "5551234567"}))
	assert.Nil(t, ValidateContact(Contact{Name: "Jane", Email: "jane@example.com"}))
	assert.Equal(t, map[string]string{"Phone": "required_without"}, ValidateContact(Contact{Name: "Jane"}))
	assert.Equal(t, map[string]string{"Email": "email"}, ValidateContact(Contact{Name: "Jane", Email: "not-an-email"}))
}

func TestMachine_NetworkErrorKeepsContact(t *testing.T) {
	api := &mockAPI{}
	m := NewMachine(api, nil, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	require.NoError(t, m.SelectService(ctx, haircut))

	c := Contact{Name: "Sam", Email: "sam@example.com"}
	api.On("AttachContact", mock.Anything, "abc", c).Return("", errNetwork).Once()
	require.Error(t, m.SubmitContact(ctx, c))
	assert.Equal(t, StateCollectContact, m.State())
	assert.Equal(t, c, m.Contact())
	assert.True(t, m.Err().Retryable)

	api.On("AttachContact", mock.Anything, "abc", c).Return("lead-1", nil).Once()
	require.NoError(t, m.SubmitContact(ctx, m.Contact()))
	assert.Nil(t, m.Err())
}

func TestMachine_FailedClickStaysReady(t *testing.T) {
	api := &mockAPI{}
	m := NewMachine(api, nil, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	api.On("AttachContact", mock.Anything, "abc", mock.Anything).Return("lead-1", nil)
	api.On("Click", mock.Anything, "abc").Return(nil, &APIError{StatusCode: 502, Message: "bad gateway"}).Once()

	require.NoError(t, m.SelectService(ctx, haircut))
	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "5551112222"}))

	_, err := m.BookNow(ctx)
	require.Error(t, err)
	assert.Equal(t, StateReadyToBook, m.State())
	assert.True(t, m.Err().Retryable)
}

func TestMachine_RetryOpenAfterBlockedPopup(t *testing.T) {
	api := &mockAPI{}
	opener := &recordingOpener{err: ErrOpenBlocked}
	m := NewMachine(api, opener, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	api.On("AttachContact", mock.Anything, "abc", mock.Anything).Return("lead-1", nil)
	api.On("Click", mock.Anything, "abc").Return(&ClickResponse{
		Handling: "external", URL: "https://calendly.com/x", RedirectType: "external",
	}, nil).Once()
	api.On("Complete", mock.Anything, "abc").Return(nil).Once()

	require.NoError(t, m.SelectService(ctx, haircut))
	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "5551112222"}))
	_, err := m.BookNow(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateDone, m.State())
	assert.False(t, m.Opened())
	require.NotNil(t, m.Err())
	api.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)

	assert.ErrorIs(t, m.RetryOpen(ctx), ErrOpenBlocked)

	opener.err = nil
	require.NoError(t, m.RetryOpen(ctx))
	assert.True(t, m.Opened())
	assert.Equal(t, []string{"https://calendly.com/x"}, opener.external)
	api.AssertExpectations(t)
}

func TestMachine_ResetClearsLocalState(t *testing.T) {
	api := &mockAPI{}
	m := NewMachine(api, nil, "sess-1", nil)
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	require.NoError(t, m.SelectService(ctx, haircut))
	_ = m.SubmitContact(ctx, Contact{Name: "Jane"})

	m.Reset()
	assert.Equal(t, StateSelectService, m.State())
	assert.Empty(t, m.IntentID())
	assert.Equal(t, Contact{}, m.Contact())
	assert.Nil(t, m.Err())
}

func TestMachine_InvalidTransitions(t *testing.T) {
	m := NewMachine(&mockAPI{}, nil, "", nil)
	ctx := context.Background()

	assert.ErrorIs(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "1"}), ErrInvalidTransition)
	_, err := m.BookNow(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, m.RetryOpen(ctx), ErrInvalidTransition)
}

func TestMachine_FailedCompletionIsLoggedAndRetried(t *testing.T) {
	api := &mockAPI{}
	opener := &recordingOpener{}
	core, logs := observer.New(zap.WarnLevel)
	m := NewMachine(api, opener, "sess-1", zap.New(core))
	ctx := context.Background()

	api.On("StartIntent", mock.Anything, mock.Anything, mock.Anything).Return("abc", nil)
	api.On("AttachContact", mock.Anything, "abc", mock.Anything).Return("lead-1", nil)
	api.On("Click", mock.Anything, "abc").Return(&ClickResponse{Handling: "internal", RedirectType: "demo"}, nil).Once()
	api.On("Complete", mock.Anything, "abc").Return(errNetwork).Once()
	api.On("Complete", mock.Anything, "abc").Return(nil).Once()

	require.NoError(t, m.SelectService(ctx, haircut))
	require.NoError(t, m.SubmitContact(ctx, Contact{Name: "Sam", Phone: "5551112222"}))
	_, err := m.BookNow(ctx)
	require.NoError(t, err)

	assert.True(t, m.Opened())
	assert.False(t, m.Completed())
	require.Equal(t, 1, logs.FilterMessage("quickbook: failed to mark intent complete").Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["intentId"])

	require.NoError(t, m.RetryOpen(ctx))
	assert.True(t, m.Completed())

	require.NoError(t, m.RetryOpen(ctx))
	api.AssertNumberOfCalls(t, "Complete", 2)
	api.AssertExpectations(t)
}

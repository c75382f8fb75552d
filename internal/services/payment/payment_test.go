package payment

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/reddigen-backend/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ClaimPayment(ctx context.Context, payment models.Payment) (int, bool, error) {
	args := m.Called(ctx, payment)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *mockRepository) FindPayment(ctx context.Context, transactionID string) (*models.Payment, bool, error) {
	args := m.Called(ctx, transactionID)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Bool(1), args.Error(2)
}

func (m *mockRepository) FindPaymentForUser(ctx context.Context, transactionID, userID string) (*models.Payment, bool, error) {
	args := m.Called(ctx, transactionID, userID)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Bool(1), args.Error(2)
}

func (m *mockRepository) FindUserIDByEmail(ctx context.Context, email string) (string, bool, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockRepository) UpsertPlan(ctx context.Context, plan models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *mockRepository) GetPlan(ctx context.Context, userID string) (*models.Plan, bool, error) {
	args := m.Called(ctx, userID)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Bool(1), args.Error(2)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(message any) error {
	args := m.Called(message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestActivate_FirstDelivery(t *testing.T) {
	repo := new(mockRepository)
	pub := new(mockPublisher)
	svc := New(repo, pub, newNoopLogger())

	repo.On("FindPayment", mock.Anything, "tx-1").Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.TransactionID == "tx-1" && p.Status == models.PaymentStatusCompleted
	})).Return(1, true, nil)
	repo.On("UpsertPlan", mock.Anything, mock.MatchedBy(func(plan models.Plan) bool {
		return plan.UserID == "u1" &&
			plan.CreditsRemaining == 150 &&
			plan.Status == models.PlanStatusActive &&
			plan.ExpiresAt != nil
	})).Return(nil)
	pub.On("Publish", mock.AnythingOfType("payment.ActivatedEvent")).Return(nil)

	already, err := svc.Activate(context.Background(), Activation{
		UserID:        "u1",
		TransactionID: "tx-1",
		PlanType:      models.PlanStarter,
		PostsPerMonth: 150,
		BillingCycle:  "monthly",
		Amount:        29.99,
	})
	require.NoError(t, err)
	assert.False(t, already)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

// Повторная доставка с известной транзакцией отсекается до захвата.
func TestActivate_AlreadyRecorded(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, "tx-1").
		Return(&models.Payment{TransactionID: "tx-1", UserID: "u1"}, true, nil)

	already, err := svc.Activate(context.Background(), Activation{
		UserID:        "u1",
		TransactionID: "tx-1",
		PlanType:      models.PlanStarter,
		PostsPerMonth: 150,
		BillingCycle:  "monthly",
	})
	require.NoError(t, err)
	assert.True(t, already)
	repo.AssertNotCalled(t, "ClaimPayment")
	repo.AssertNotCalled(t, "UpsertPlan")
}

func TestActivate_DuplicateDelivery(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	// пока идет параллельная доставка, записи еще нет, но захват проигран
	repo.On("FindPayment", mock.Anything, "tx-1").Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.Anything).Return(0, false, nil)

	already, err := svc.Activate(context.Background(), Activation{
		UserID:        "u1",
		TransactionID: "tx-1",
		PlanType:      models.PlanStarter,
		PostsPerMonth: 150,
		BillingCycle:  "monthly",
	})
	require.NoError(t, err)
	assert.True(t, already)
	// повторная доставка не трогает план
	repo.AssertNotCalled(t, "UpsertPlan")
}

func TestActivate_YearlyExpiry(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, mock.Anything).Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.Anything).Return(1, true, nil)
	repo.On("UpsertPlan", mock.Anything, mock.MatchedBy(func(plan models.Plan) bool {
		return plan.ExpiresAt != nil &&
			plan.ExpiresAt.After(time.Now().AddDate(0, 11, 0))
	})).Return(nil)

	_, err := svc.Activate(context.Background(), Activation{
		UserID:        "u1",
		TransactionID: "tx-2",
		PlanType:      models.PlanProfessional,
		PostsPerMonth: 250,
		BillingCycle:  "yearly",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerify_UserResolution(t *testing.T) {
	cases := []struct {
		name       string
		authUserID string
		req        models.VerifyPaymentRequest
		setup      func(repo *mockRepository)
		expectedID string
		expectErr  error
	}{
		{
			name:       "пользователь из токена имеет приоритет",
			authUserID: "auth-user",
			req:        models.VerifyPaymentRequest{Plan: "starter", PostsPerMonth: 150, UserID: "body-user", SessionID: "tx"},
			expectedID: "auth-user",
		},
		{
			name: "без токена берется userId из тела",
			req:  models.VerifyPaymentRequest{Plan: "starter", PostsPerMonth: 150, UserID: "body-user", SessionID: "tx"},
			expectedID: "body-user",
		},
		{
			name: "поиск по email как последний вариант",
			req:  models.VerifyPaymentRequest{Plan: "starter", PostsPerMonth: 150, Email: "carol@example.com", SessionID: "tx"},
			setup: func(repo *mockRepository) {
				repo.On("FindUserIDByEmail", mock.Anything, "carol@example.com").Return("email-user", true, nil)
			},
			expectedID: "email-user",
		},
		{
			name:      "пользователь не определен",
			req:       models.VerifyPaymentRequest{Plan: "starter", PostsPerMonth: 150, SessionID: "tx"},
			expectErr: ErrUnknownUser,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepository)
			svc := New(repo, nil, newNoopLogger())
			if tc.setup != nil {
				tc.setup(repo)
			}
			repo.On("FindPayment", mock.Anything, mock.Anything).Return(nil, false, nil).Maybe()
			repo.On("ClaimPayment", mock.Anything, mock.Anything).Return(1, true, nil).Maybe()
			repo.On("UpsertPlan", mock.Anything, mock.Anything).Return(nil).Maybe()

			userID, _, err := svc.Verify(context.Background(), tc.authUserID, tc.req)
			if tc.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedID, userID)
		})
	}
}

func TestVerify_ManualTransactionID(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, mock.Anything).Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return strings.HasPrefix(p.TransactionID, "manual_")
	})).Return(1, true, nil)
	repo.On("UpsertPlan", mock.Anything, mock.Anything).Return(nil)

	_, _, err := svc.Verify(context.Background(), "u1", models.VerifyPaymentRequest{
		Plan:          "starter",
		PostsPerMonth: 150,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessEvent_NestedSession(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, "sess_123").Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.TransactionID == "sess_123" &&
			p.UserID == "u1" &&
			p.Amount == 29.99 &&
			p.PlanType == "professional"
	})).Return(1, true, nil)
	repo.On("UpsertPlan", mock.Anything, mock.MatchedBy(func(plan models.Plan) bool {
		return plan.CreditsRemaining == 250
	})).Return(nil)

	body := []byte(`{
		"type": "payment.succeeded",
		"data": {"object": {
			"id": "sess_123",
			"customer_email": "dave@example.com",
			"amount_total": 2999,
			"metadata": {"userId": "u1", "planType": "professional", "postsPerMonth": "250", "billingCycle": "monthly"}
		}}
	}`)
	require.NoError(t, svc.ProcessEvent(context.Background(), body))
	repo.AssertExpectations(t)
}

func TestProcessEvent_FlatSession(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, "ch_9").Return(nil, false, nil)
	repo.On("ClaimPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		// умолчания: starter, 50 постов
		return p.TransactionID == "ch_9" && p.PlanType == "starter" && p.PostsPerMonth == 50
	})).Return(1, true, nil)
	repo.On("UpsertPlan", mock.Anything, mock.Anything).Return(nil)

	body := []byte(`{
		"type": "charge.succeeded",
		"id": "ch_9",
		"amount": 999,
		"metadata": {"userId": "u2"}
	}`)
	require.NoError(t, svc.ProcessEvent(context.Background(), body))
	repo.AssertExpectations(t)
}

func TestProcessEvent_DuplicateDelivery(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPayment", mock.Anything, "sess_123").
		Return(&models.Payment{TransactionID: "sess_123", UserID: "u1"}, true, nil)

	body := []byte(`{
		"type": "payment.succeeded",
		"data": {"object": {"id": "sess_123", "metadata": {"userId": "u1"}}}
	}`)
	require.NoError(t, svc.ProcessEvent(context.Background(), body))
	repo.AssertNotCalled(t, "ClaimPayment")
	repo.AssertNotCalled(t, "UpsertPlan")
}

func TestValidateEvent(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		expectErr error
	}{
		{
			name: "валидное событие проходит",
			body: `{"type":"checkout.session.completed","data":{"object":{"id":"s1","metadata":{"userId":"u1"}}}}`,
		},
		{
			name: "событие без userId отклоняется",
			body: `{"type":"payment.succeeded","data":{"object":{"id":"s1","metadata":{}}}}`,
			expectErr: ErrUnknownUser,
		},
		{
			name: "неизвестный тип не требует метаданных",
			body: `{"type":"invoice.created"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(new(mockRepository), nil, newNoopLogger())
			err := svc.ValidateEvent([]byte(tc.body))
			if tc.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateEvent_MalformedBody(t *testing.T) {
	svc := New(new(mockRepository), nil, newNoopLogger())
	require.Error(t, svc.ValidateEvent([]byte(`{"type":`)))
}

func TestProcessEvent_UnknownType(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	body := []byte(`{"type": "invoice.created"}`)
	require.NoError(t, svc.ProcessEvent(context.Background(), body))
	repo.AssertNotCalled(t, "ClaimPayment")
}

func TestProcessEvent_MissingUserID(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	body := []byte(`{"type": "payment.succeeded", "data": {"object": {"id": "sess_1", "metadata": {}}}}`)
	err := svc.ProcessEvent(context.Background(), body)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestCheckStatus(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	p := &models.Payment{TransactionID: "tx-1", UserID: "u1", Status: models.PaymentStatusCompleted}
	plan := &models.Plan{UserID: "u1", PlanType: models.PlanStarter}

	repo.On("FindPaymentForUser", mock.Anything, "tx-1", "u1").Return(p, true, nil)
	repo.On("GetPlan", mock.Anything, "u1").Return(plan, true, nil)

	status, found, err := svc.CheckStatus(context.Background(), "u1", "tx-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.PaymentStatusCompleted, status.Status)
	assert.Equal(t, plan, status.Plan)
}

func TestCheckStatus_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, nil, newNoopLogger())

	repo.On("FindPaymentForUser", mock.Anything, "tx-x", "u1").Return(nil, false, nil)

	_, found, err := svc.CheckStatus(context.Background(), "u1", "tx-x")
	require.NoError(t, err)
	assert.False(t, found)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/internal/core/ports/mocks"
	"tapneat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean url untouched",
			in:   "https://qsr.example.com/Tap-N-Eat",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "trailing slash stripped",
			in:   "https://qsr.example.com/Tap-N-Eat/",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "duplicated app path collapsed",
			in:   "https://qsr.example.com/Tap-N-Eat/Tap-N-Eat",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "duplicated path collapsed case-insensitively",
			in:   "https://qsr.example.com/Tap-N-Eat/tap-n-eat",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "frontend suffix stripped",
			in:   "https://qsr.example.com/Tap-N-Eat/frontend/index.html",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "frontend suffix stripped case-insensitively",
			in:   "https://qsr.example.com/Tap-N-Eat/Frontend",
			want: "https://qsr.example.com/Tap-N-Eat",
		},
		{
			name: "bare host",
			in:   "http://localhost:8080",
			want: "http://localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		})
	}
}

func TestPrintQueueService_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "https://qsr.example.com/Tap-N-Eat/Tap-N-Eat/", 10, zerolog.Nop())

	entryID := uuid.New()
	req := ports.EnqueueRequest{
		EmployeeName:  "Asha Verma",
		EmployeeCode:  "EMP001",
		Site:          "Pune Campus",
		LedgerEntryID: &entryID,
		MealLabel:     "Lunch",
		Amount:        5000,
		Balance:       95000,
		OccurredAt:    time.Date(2025, 3, 14, 13, 5, 0, 0, time.UTC),
	}

	repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.PrintJob) error {
			assert.Equal(t, domain.PrintJobPending, job.Status)
			assert.Equal(t, "https://qsr.example.com/Tap-N-Eat/receipt?id="+entryID.String(), job.ReceiptURL)
			assert.NotEqual(t, uuid.Nil, job.ID)
			return nil
		})

	job, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", job.MealLabel)
}

func TestPrintQueueService_Enqueue_NoLedgerEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())

	repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.PrintJob) error {
			assert.Empty(t, job.ReceiptURL)
			assert.False(t, job.OccurredAt.IsZero())
			return nil
		})

	_, err := svc.Enqueue(context.Background(), ports.EnqueueRequest{
		EmployeeName: "Asha Verma",
		Amount:       5000,
		Balance:      95000,
	})
	assert.NoError(t, err)
}

func TestPrintQueueService_Claim_DefaultsAndCaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())
	ctx := context.Background()

	repo.EXPECT().ClaimBatch(ctx, 10).Return(nil, nil) // limit 0 -> default
	_, err := svc.Claim(ctx, 0)
	require.NoError(t, err)

	repo.EXPECT().ClaimBatch(ctx, maxClaimBatch).Return(nil, nil) // oversize capped
	_, err = svc.Claim(ctx, 5000)
	require.NoError(t, err)

	repo.EXPECT().ClaimBatch(ctx, 3).Return([]domain.PrintJob{{ID: uuid.New()}}, nil)
	jobs, err := svc.Claim(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestPrintQueueService_GetJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())
	id := uuid.New()

	repo.EXPECT().GetByID(gomock.Any(), id).Return(&domain.PrintJob{ID: id, Status: domain.PrintJobCompleted}, nil)

	job, err := svc.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, domain.PrintJobCompleted, job.Status)
}

func TestPrintQueueService_GetJob_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())
	id := uuid.New()

	repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.GetJob(context.Background(), id)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CARD_001", appErr.Code)
}

func TestPrintQueueService_Complete_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())
	id := uuid.New()

	repo.EXPECT().MarkTerminal(gomock.Any(), id, domain.PrintJobCompleted, nil).Return(true, nil)
	require.NoError(t, svc.Complete(context.Background(), id))

	// Second report: row already terminal, still no error.
	repo.EXPECT().MarkTerminal(gomock.Any(), id, domain.PrintJobCompleted, nil).Return(false, nil)
	require.NoError(t, svc.Complete(context.Background(), id))
}

func TestPrintQueueService_Fail_CarriesDetail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())
	id := uuid.New()

	repo.EXPECT().MarkTerminal(gomock.Any(), id, domain.PrintJobFailed, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, _ domain.PrintJobStatus, detail *string) (bool, error) {
			require.NotNil(t, detail)
			assert.Equal(t, "printer offline", *detail)
			return true, nil
		})

	require.NoError(t, svc.Fail(context.Background(), id, "printer offline"))
}

func TestPrintQueueService_Fail_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPrintJobRepository(ctrl)
	svc := NewPrintQueueService(repo, "http://localhost:8080", 10, zerolog.Nop())

	repo.EXPECT().MarkTerminal(gomock.Any(), gomock.Any(), domain.PrintJobFailed, gomock.Any()).
		Return(false, errors.New("db down"))

	err := svc.Fail(context.Background(), uuid.New(), "x")
	assert.Error(t, err)
}

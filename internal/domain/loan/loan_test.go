package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		loan models.Loan
		want bool
	}{
		{
			name: "active before due date",
			loan: models.Loan{DueAt: now.AddDate(0, 0, 7)},
			want: false,
		},
		{
			name: "active past due date",
			loan: models.Loan{DueAt: now.Add(-time.Minute)},
			want: true,
		},
		{
			name: "due exactly now",
			loan: models.Loan{DueAt: now},
			want: false,
		},
		{
			name: "returned loans are never overdue",
			loan: models.Loan{DueAt: now.AddDate(0, 0, -30), ReturnedAt: &past},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsOverdue(&tt.loan, now))
		})
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Now()
	require.Equal(t, StatusActive, StatusOf(&models.Loan{}))
	require.Equal(t, StatusReturned, StatusOf(&models.Loan{ReturnedAt: &now}))
}

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	l := New(10, 3, 0, now)
	require.Equal(t, uint(10), l.UserID)
	require.Equal(t, uint(3), l.BookID)
	require.Equal(t, now, l.BorrowedAt)
	require.Equal(t, now.AddDate(0, 0, DefaultDueDays), l.DueAt)
	require.Nil(t, l.ReturnedAt)

	l = New(10, 3, 30, now)
	require.Equal(t, now.AddDate(0, 0, 30), l.DueAt)
}

func TestReturnIsTerminal(t *testing.T) {
	now := time.Now()
	l := New(10, 3, 14, now)

	require.NoError(t, Return(l, now))
	require.NotNil(t, l.ReturnedAt)

	err := Return(l, now)
	require.Equal(t, "already_returned", httperr.BusinessCode(err))

	err = Extend(l, 7)
	require.Equal(t, "already_returned", httperr.BusinessCode(err))
}

func TestExtendAccumulates(t *testing.T) {
	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	l := &models.Loan{DueAt: due}

	require.NoError(t, Extend(l, 0))
	require.Equal(t, time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), l.DueAt)

	require.NoError(t, Extend(l, 0))
	require.Equal(t, time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC), l.DueAt)

	require.NoError(t, Extend(l, 3))
	require.Equal(t, time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), l.DueAt)
}

package loan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

func TestResolveBorrower(t *testing.T) {
	cust := Principal{UserID: 10, Role: models.RoleCustomer}
	lib := Principal{UserID: 1, Role: models.RoleLibrarian}

	tests := []struct {
		name     string
		p        Principal
		target   uint
		want     uint
		wantCode string
	}{
		{name: "customer without target borrows for themselves", p: cust, target: 0, want: 10},
		{name: "customer naming themselves", p: cust, target: 10, want: 10},
		{name: "customer naming someone else", p: cust, target: 11, wantCode: "customers_borrow_for_themselves"},
		{name: "librarian naming a borrower", p: lib, target: 10, want: 10},
		{name: "librarian without a borrower", p: lib, target: 0, wantCode: "user_id_required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBorrower(tt.p, tt.target)
			if tt.wantCode != "" {
				require.Equal(t, tt.wantCode, httperr.BusinessCode(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCanAccess(t *testing.T) {
	cust := Principal{UserID: 10, Role: models.RoleCustomer}
	lib := Principal{UserID: 1, Role: models.RoleLibrarian}

	require.NoError(t, CanAccess(cust, 10))
	require.NoError(t, CanAccess(lib, 10))

	err := CanAccess(cust, 11)
	require.Equal(t, "loan_access_denied", httperr.BusinessCode(err))
}

package loan

import (
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

// Principal is the authenticated caller a loan operation acts on behalf of.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsLibrarian() bool {
	return p.Role == models.RoleLibrarian
}

// ResolveBorrower decides which user a new loan is created for. Customers
// always borrow for themselves; librarians must name the target user.
func ResolveBorrower(p Principal, targetUserID uint) (uint, error) {
	if !p.IsLibrarian() {
		if targetUserID != 0 && targetUserID != p.UserID {
			return 0, httperr.ErrBusiness("customers_borrow_for_themselves")
		}
		return p.UserID, nil
	}

	if targetUserID == 0 {
		return 0, httperr.ErrBusiness("user_id_required")
	}
	return targetUserID, nil
}

// CanAccess gates per-loan reads and returns. Librarians see everything;
// customers only their own loans. A foreign loan is forbidden, not hidden.
func CanAccess(p Principal, ownerID uint) error {
	if p.IsLibrarian() || p.UserID == ownerID {
		return nil
	}
	return httperr.ErrBusiness("loan_access_denied")
}

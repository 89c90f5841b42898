package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/models"
)

// Operation names a protected operation for the permission table
type Operation string

// All role-gated operations
const (
	OpRegisterCase    Operation = "case.register"
	OpListCases       Operation = "case.list"
	OpUpdateCase      Operation = "case.update"
	OpLawyerAction    Operation = "case.lawyer-action"
	OpUploadEvidence  Operation = "evidence.upload"
	OpSignEvidence    Operation = "evidence.sign-upload"
	OpViewEvidence    Operation = "evidence.view"
	OpCreatePayment   Operation = "payment.create"
	OpListPayments    Operation = "payment.list"
	OpVerifyPayment   Operation = "payment.verify"
	OpExportPayments  Operation = "payment.export"
	OpCheckoutSession Operation = "payment.checkout-session"
	OpUpsertSummary   Operation = "summary.upsert"
	OpViewSummary     Operation = "summary.view"
	OpViewProfile     Operation = "user.profile.view"
	OpUpdateProfile   Operation = "user.profile.update"
	OpListLawyers     Operation = "user.lawyers.list"
)

// permissions is the single source of truth for which roles may perform
// which operation. An operation missing from the table is open to every
// authenticated role; per-record visibility is still enforced inside the
// handlers. Role checks happen once here, at the dispatch boundary.
var permissions = map[Operation][]models.Role{
	OpRegisterCase:    {models.RoleCitizen, models.RolePolice},
	OpUpdateCase:      {models.RoleCourt, models.RoleSuperAdmin},
	OpLawyerAction:    {models.RoleLawyer},
	OpUploadEvidence:  {models.RoleCourt},
	OpSignEvidence:    {models.RoleCourt},
	OpCreatePayment:   {models.RoleCitizen},
	OpVerifyPayment:   {models.RoleFinance, models.RoleSuperAdmin},
	OpExportPayments:  {models.RoleFinance, models.RoleSuperAdmin},
	OpCheckoutSession: {models.RoleCitizen},
	OpUpsertSummary:   {models.RoleCourt},
}

// Allowed reports whether the role may perform the operation
func Allowed(op Operation, role models.Role) bool {
	allowed, gated := permissions[op]
	if !gated {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize gates a handler on the permission table. It must run after the
// auth middleware has placed the user on the context.
func Authorize(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w, r, nil)
				return
			}
			if !Allowed(op, user.Role) {
				zap.S().Warnw("forbidden",
					"operation", op,
					"role", user.Role,
					"userId", user.UserID,
				)
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

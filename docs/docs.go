// Package docs CourtSphere API.
//
// Documentation of CourtSphere API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://courtsphere-api.herokuapp.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/courtsphere/courtsphere-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/auth/login auth loginEndpointID
// Exchanges user credentials for a bearer token.
// responses:
//   200: loginResponse

// Shows the authenticated user with their signed token.
// swagger:response loginResponse
type loginResponseWrapper struct {
	// in:body
	Body models.AuthResponse
}

// swagger:route GET /api/v1/cases cases listCasesID
// Lists the cases visible to the requesting role.
// responses:
//   200: listCasesResponse

// Shows every case the requester may see, with complainant and lawyer resolved.
// swagger:response listCasesResponse
type listCasesResponseWrapper struct {
	// in:body
	Body []models.CaseView
}

// swagger:route GET /api/v1/payments payments listPaymentsID
// Lists payments, the full ledger for finance and superadmin.
// responses:
//   200: listPaymentsResponse

// Shows the payments visible to the requester with case references resolved.
// swagger:response listPaymentsResponse
type listPaymentsResponseWrapper struct {
	// in:body
	Body []models.PaymentView
}

// swagger:route GET /api/v1/evidence/{case_id} evidence evidenceByCaseID
// Lists the evidence recorded against a case.
// responses:
//   200: evidenceByCaseResponse

// Shows the evidence of a case with the uploading official resolved.
// swagger:response evidenceByCaseResponse
type evidenceByCaseResponseWrapper struct {
	// in:body
	Body []models.EvidenceView
}

// swagger:route GET /api/v1/summary/{case_id} summary summaryByCaseID
// Gets the summary recorded for a case.
// responses:
//   200: summaryByCaseResponse

// Shows the case summary with the recording official resolved.
// swagger:response summaryByCaseResponse
type summaryByCaseResponseWrapper struct {
	// in:body
	Body models.CaseSummaryView
}

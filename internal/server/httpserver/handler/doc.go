// Package handler provides the HTTP request handlers of a frontend node.
//
//   - account.go: account creation and single ID issuance
//   - admin.go: reset and cluster membership
//   - health.go: health and readiness checks
//
// Handlers parse the request, call the account service and map coded
// domain errors to HTTP statuses. An ID that does not arrive within the
// ask timeout is reported as 503 with IDM-SYS-5030.
package handler

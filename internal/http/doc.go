// Package http provides HTTP handlers and middleware for the attendance API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","profile"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current, POST /sessions/refresh: revoke or rotate the token
//     extracted from the Authorization header or session cookie.
//   - GET /me, PUT /me/password: self-service profile access.
//   - /profiles, /locations, /locations/{id}/areas, /areas/{id}: administrator
//     managed directories. Listing locations and areas is open to any principal.
//   - /schedules and GET /schedules/resolve: shift definitions and the shift
//     that applies to a user on a date.
//   - POST /attendance/check-in, POST /attendance/check-out, GET /attendance/current,
//     GET /attendance, PUT /attendance/{id}/status, POST /attendance/recompute.
//   - /job-templates, POST /checklists/generate, GET /checklists,
//     POST /checklists/{id}/start, POST /checklists/{id}/complete.
//   - /notifications and /devices: the inbox and push registrations.
//   - GET /reports/attendance.xlsx: spreadsheet export for managers.
//
// Errors are rendered as {"error_code","message","errors"} where errors maps
// field names to validation messages.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

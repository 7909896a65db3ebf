// Package http provides HTTP handlers and middleware for the maintenance API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's own session token taken
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - DELETE /sessions/{token}: administrator revocation of an arbitrary token.
//   - GET /work-orders, POST /work-orders, GET /work-orders/{id},
//     PUT /work-orders/{id}, DELETE /work-orders/{id}: work order management
//     exchanging the `workOrderDTO` payload defined in work_order_handler.go.
//     Mutation responses include conflict warnings; completing a recurring
//     order spawns its successor server-side.
//   - GET /assets, POST /assets, GET /assets/{id}, PUT /assets/{id},
//     DELETE /assets/{id}: asset catalog endpoints exchanging the `assetDTO`
//     payload defined in asset_handler.go.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id},
//     DELETE /users/{id}: administrator controlled user management.
//   - GET /tenants, POST /tenants, GET /tenants/{id}, PUT /tenants/{id}:
//     tenant management including working-day configuration.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

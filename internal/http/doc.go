// Package http serves the gateway contract to remote clients.
//
// Public endpoints:
//   - POST /auth/signup, POST /auth/signin: body {"email","password"}; response
//     {"access_token","expires_at","user":{"id","email"}}.
//   - GET /auth/oauth/{provider}?redirect_to=: 302 to the provider's sign-in page.
//   - POST /auth/signout: 204.
//
// Every other endpoint requires a bearer token, taken from the Authorization
// header or, for WebSocket upgrades, the token query parameter:
//   - GET/POST /events, GET/PUT/DELETE /events/{id}: only the organizer may
//     update or delete an event.
//   - POST /events/{id}/tickets, GET /tickets: tickets of the caller.
//   - GET/PUT /events/{id}/ratings, GET /rpc/{name}.
//   - GET/POST /events/{id}/messages, GET /events/{id}/messages/subscribe
//     (WebSocket, one JSON chat message per frame).
//   - GET /events/{id}/breakout-rooms.
//   - GET /profiles.
//   - GET/POST/PATCH/DELETE /friendships: rows involving the caller.
//   - GET/PUT /settings: the caller's settings document.
//
// List endpoints accept field=op.value filters (eq, neq, ilike), order=field.asc|desc
// and limit=n. Errors are returned as {"error_code","message","errors"}.
// Writes never trust user identifiers from the body: the caller's identity
// from the token is used instead.
package http

// Package session owns the client side of a cookie-refresh auth scheme:
// the in-memory access token, its renewal, and the feature gating derived
// from the signed-in user's state.
//
// Token lifecycle:
//   - TokenManager is the single authority for the access token. It hands
//     out a token only while it outlives a refresh buffer, renews it with a
//     single-flight POST against the backend (the refresh credential stays
//     in an httpOnly cookie the library never reads), and broadcasts
//     lifecycle facts on an Events bundle. Construct one per application;
//     tests build isolated instances with their own clock and transport.
//
// Events:
//   - Emitter is a typed synchronous pub/sub channel. Four channels cover
//     the session lifecycle: tokens cleared, tokens refreshed, cross-tab
//     logout, and the authenticated flag. Listeners run in subscription
//     order and a panicking listener never starves the rest.
//
// Access control:
//   - ComputeUserState collapses the user record and subscription status
//     into one of seven discrete states. AccessResolver answers feature,
//     nav-group, and route queries against a static AccessPolicy,
//     fail-closed: a feature nobody registered is a feature nobody gets.
//
// Cross-tab/cross-process propagation transports live under crosstab/;
// structured-logging adapters under adapters/.
package session

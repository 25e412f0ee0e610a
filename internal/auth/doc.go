// Package auth guards the sync console.
//
// Two modes are supported:
//   - "none": no login; every request acts as the single local operator and
//     shares the global sync coordinator
//   - "local": console accounts in the main database, signed in through
//     scs session cookies; each session gets its own coordinator key
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, generated per process if empty
//	AUTH_SESSION_LIFETIME=12h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=30m
//
// Only the admin role may start sync jobs; viewers can watch the dashboard.
package auth

// Package scanner implements the passive posture check engine.
//
// Architecture overview:
//
//   - Checks implement the Check interface (Key + Title + Run) for one
//     heuristic domain each: transport security, CSP, MIME sniffing,
//     framing, referrer policy, permissions policy, HTML caching, cookie
//     flags, CORS, API documentation discovery, and artifact discovery.
//   - Scanner owns the shared HTTP client and the fixed, ordered check
//     registry; RunScan fans all checks out concurrently and assembles
//     findings in registration order so output and scoring stay
//     deterministic.
//   - A check never returns an error: network, TLS, and parse failures are
//     absorbed at the check boundary and downgraded to INFO findings, so a
//     single broken probe can never abort a scan.
//   - Discovery checks walk curated well-known path lists with a cheap HEAD
//     probe followed by a size-bounded GET, pace themselves through a shared
//     rate limiter, and cap all evidence they record.
//
// Adding a check means adding a type that implements Check and registering
// it in New; nothing else branches on check identity.
package scanner

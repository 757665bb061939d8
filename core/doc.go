// Package core contains the Login with Amazon token lifecycle: application
// keys, immutable configuration, the grant flows of TokenManager and the
// observer contracts callers use to persist tokens and inspect responses.
// Resource builders and stores depend on this package; core must not depend
// on them.
package core

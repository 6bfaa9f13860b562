// Package driving defines the interfaces through which the outside world
// drives the core (primary ports). The CLI and TUI adapters depend on
// these, and core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package, any driven port implementation
package driving

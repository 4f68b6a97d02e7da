// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM, an explicit Trigger (for example
// when the actor system fails) or the cancellation of a context, then
// runs the registered hooks in reverse registration order within a
// timeout. Hook errors are combined, not short-circuited.
package shutdown

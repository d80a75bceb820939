// Package kernel holds value objects shared by every aggregate of the order
// workflow service. Today that is the UUID identifier used for orders, history
// entries, outbox messages, workspaces and brands.
package kernel

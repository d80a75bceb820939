// Package order models the purchase order of the apparel workflow: the Order
// aggregate, its Status enumeration, the Role and Actor types used to authorize
// transitions, the append-only StatusHistoryEntry ledger and the StatusChanged
// event.
//
// Key business rules:
//   - New orders start at INTAKE with version 0
//   - Status changes go through Order.ChangeStatus only; each one increments the
//     version, yields exactly one history entry and records one event
//   - Re-applying the current status is rejected as a redundant transition
//   - Status and Role are closed enumerations; unknown names are rejected
//
// Which transitions are legal and which roles may perform them is configuration,
// owned by services.OrderWorkflow.
package order

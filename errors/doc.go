// Package errors defines the pipeline error taxonomy: sentinel errors for
// protocol faults (not-found, invalid transition, duplicate/unknown stage),
// ValidationError for caller-input problems, and InfraError for external
// collaborator failures.
//
// Propagation policy: caller-input-shaped problems become data in the stage
// result envelope; lifecycle protocol violations surface as typed errors;
// only infrastructure faults propagate as hard failures.
package errors

// Package stage defines the stage contract (Definition, Strategy, Result)
// and the Registry that gates and executes stages against the artifact
// lifecycle manager.
//
// Stages declare what they require (artifact type + minimum status) and
// what they produce. The registry gates on those declarations only, never
// on stage numbering.
package stage

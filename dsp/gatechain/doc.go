// Package gatechain hosts low-pass gate voices behind a configurable
// serial processing chain.
//
// A Chain is loaded from a JSON array of node configs and processes one
// mono signal in place, node by node. Node runtimes are created through
// a Registry, so applications can add their own node types next to the
// built-in low-pass gate and gain stages. The low-pass gate node carries
// an internal trigger clock, letting a chain chop a sustained input into
// rhythmic plucks without an external sequencer.
package gatechain

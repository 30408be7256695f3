// Package limiters tracks cumulative authentication failures per actor and
// signals when an actor should be promoted from transient throttling to a
// durable block.
package limiters

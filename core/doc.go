// Package core implements the actor-based message-passing runtime that
// every edgekit component is built on.
//
// This package provides the basic building blocks including Mailbox,
// Recipient, Builder, and Runtime that let independently scheduled actors
// be constructed, wired into a communication graph, spawned, and
// supervised while exchanging strongly-typed messages through
// backpressured mailboxes.
package core

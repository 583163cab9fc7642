// Package responder provides the replies a listening endpoint sends back
// for every frame it drains.
package responder

// Package repeat implements the A-B repeat state machine.
//
// A Controller moves between Idle, Selecting and Armed. While Armed a ticker
// goroutine checks the player position every interval and snaps it back to A
// whenever it leaves [A, B). Every tick re-checks the state and a loop
// generation under the controller lock, and performs its seek while holding
// that lock, so once a transition leaves Armed no further correction happens.
package repeat

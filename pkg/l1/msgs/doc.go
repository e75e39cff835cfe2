// Package msgs provides L1 protocol support and all message schemas.
package msgs

// L1 protocol is communicated between L1 controller and L2 brain,
// and uses hardware-agnostic primitives.
//
// Producer: L1 controller
// Consumer: L2 brain

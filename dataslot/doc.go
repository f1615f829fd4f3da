// Package dataslot is the firmware's view of the data slot bridge.
//
// Before the CPU leaves reset, the host copies every data slot described in
// data.json into SDRAM at a fixed address and then raises a completion flag.
// Firmware never drives a load itself: it waits for the flag, asks for slot
// sizes, and copies bytes out of the resident images.
//
// # Implementations
//
//   - Resident: slots already sitting in an sdram.Memory image.
//   - Preload: host-side stand-in for the automatic load. Reads every slot
//     file named by a Manifest (plain, .zst or .lz4) into its address and
//     returns a ready Resident bridge.
//   - Throttle: paces ReadAt to emulate bridge bandwidth.
//   - Unsupported: a bridge with nothing behind it; every query fails.
//
// Load and LoadToAddr exist for callers written against a staged-load API and
// always report ErrNotSupported.
package dataslot

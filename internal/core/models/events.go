package models

import "time"

// Event is a discrete signal delivered to the monitor loop. All mutation of
// telemetry state is driven by events arriving on a single ordered channel,
// so there is at most one mutator at a time.
type Event interface {
	monitorEvent()
}

// BandwidthEvent carries one sampling tick of raw byte counts.
type BandwidthEvent struct {
	Read      uint64
	Written   uint64
	Timestamp time.Time
}

// ResetEvent signals a daemon reload; accounting may have been switched on
// or off and the rate/burst settings may have changed.
type ResetEvent struct{}

// DescriptorEvent signals that the daemon published a new descriptor, which
// can change the measured/observed bandwidth labels.
type DescriptorEvent struct{}

func (BandwidthEvent) monitorEvent()  {}
func (ResetEvent) monitorEvent()      {}
func (DescriptorEvent) monitorEvent() {}

package qnet

// channel.go defines the quantum and classical channel objects.  Channels are
// directed: bound to a source node object at install time and to a
// destination name whose resolution to an object is deferred until use.

import "fmt"

// QuantumChannel carries photons from a source endpoint toward a midpoint (or
// any declared destination).  Attenuation and distance parameterize the
// physical model, which lives outside this package.
type QuantumChannel struct {
	name        string
	tl          *Timeline
	Attenuation float64
	Distance    int

	src     Node
	dstName string
}

// NewQuantumChannel is a constructor.
func NewQuantumChannel(name string, tl *Timeline, attenuation float64, distance int) *QuantumChannel {
	qc := new(QuantumChannel)
	qc.name = name
	qc.tl = tl
	qc.Attenuation = attenuation
	qc.Distance = distance
	return qc
}

// Name returns the channel name.
func (qc *QuantumChannel) Name() string {
	return qc.name
}

// SetEnds binds the channel to its source node object and destination name.
func (qc *QuantumChannel) SetEnds(src Node, dstName string) {
	qc.src = src
	qc.dstName = dstName
}

// Sender returns the source node object.
func (qc *QuantumChannel) Sender() Node {
	return qc.src
}

// ReceiverName returns the destination name.
func (qc *QuantumChannel) ReceiverName() string {
	return qc.dstName
}

// Receiver resolves the destination name against the timeline, returning nil
// while the destination is not registered.
func (qc *QuantumChannel) Receiver() Node {
	ent := qc.tl.GetEntityByName(qc.dstName)
	node, ok := ent.(Node)
	if !ok {
		return nil
	}
	return node
}

// ClassicalChannel carries classical messages one way with a fixed delay.
type ClassicalChannel struct {
	name     string
	tl       *Timeline
	Distance float64
	Delay    float64

	src     Node
	dstName string
}

// NewClassicalChannel is a constructor.  A negative distance or delay marks
// the value as undeclared.
func NewClassicalChannel(name string, tl *Timeline, distance, delay float64) *ClassicalChannel {
	cc := new(ClassicalChannel)
	cc.name = name
	cc.tl = tl
	cc.Distance = distance
	cc.Delay = delay
	return cc
}

// Name returns the channel name.
func (cc *ClassicalChannel) Name() string {
	return cc.name
}

// SetEnds binds the channel to its source node object and destination name.
func (cc *ClassicalChannel) SetEnds(src Node, dstName string) {
	cc.src = src
	cc.dstName = dstName
}

// Sender returns the source node object.
func (cc *ClassicalChannel) Sender() Node {
	return cc.src
}

// ReceiverName returns the destination name.
func (cc *ClassicalChannel) ReceiverName() string {
	return cc.dstName
}

// Receiver resolves the destination name against the timeline, returning nil
// while the destination is not registered.
func (cc *ClassicalChannel) Receiver() Node {
	ent := cc.tl.GetEntityByName(cc.dstName)
	node, ok := ent.(Node)
	if !ok {
		return nil
	}
	return node
}

// defaultQCName generates the name for an explicit quantum channel whose
// declaration carries none.
func defaultQCName(src, dst string) string {
	return fmt.Sprintf("qc-%s-%s", src, dst)
}

// defaultCCName generates the name for a classical channel whose declaration
// carries none.
func defaultCCName(src, dst string) string {
	return fmt.Sprintf("cc-%s-%s", src, dst)
}

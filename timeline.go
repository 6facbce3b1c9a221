package qnet

// timeline.go wraps the discrete event manager with the entity name space a
// topology is bound to.  The construction pipeline creates one Timeline per
// topology; every node registers itself here, and channels resolve their
// destinations against the same name space.

import (
	"fmt"
	"math"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// Entity is implemented by every object registered in the timeline's name
// space.
type Entity interface {
	Name() string
}

// Timeline owns the event manager and the entity name space for one
// simulation run.  Topology construction completes before any simulation
// time advances, so registration is single-threaded by contract.
type Timeline struct {
	evtMgr   *evtm.EventManager
	entities map[string]Entity

	// global simulation scalars carried from the configuration
	StopTime   float64
	Formalism  string
	Truncation int
}

// NewTimeline is a constructor.  A stopTime of zero means unbounded.
func NewTimeline(stopTime float64, formalism string, truncation int) *Timeline {
	if stopTime == 0 {
		stopTime = math.Inf(1)
	}
	if len(formalism) == 0 {
		formalism = KetStateFormalism
	}
	if truncation == 0 {
		truncation = 1
	}

	tl := new(Timeline)
	tl.evtMgr = evtm.New()
	tl.entities = make(map[string]Entity)
	tl.StopTime = stopTime
	tl.Formalism = formalism
	tl.Truncation = truncation
	return tl
}

// Register adds the entity to the timeline's name space.  Entity names are
// unique within a timeline; a duplicate is an error.
func (tl *Timeline) Register(ent Entity) error {
	name := ent.Name()
	_, present := tl.entities[name]
	if present {
		return fmt.Errorf("entity name %s already registered with timeline", name)
	}
	tl.entities[name] = ent
	return nil
}

// GetEntityByName returns the registered entity with the given name, or nil
// when none exists.
func (tl *Timeline) GetEntityByName(name string) Entity {
	return tl.entities[name]
}

// EvtMgr exposes the event manager so collaborators can schedule events
// against this timeline.
func (tl *Timeline) EvtMgr() *evtm.EventManager {
	return tl.evtMgr
}

// Schedule places an event handler execution secs into the virtual future.
func (tl *Timeline) Schedule(context any, data any,
	hdlr evtm.EventHandlerFunction, secs float64) {
	tl.evtMgr.Schedule(context, data, hdlr, vrtime.SecondsToTime(secs))
}

// Run drives the event manager until the stop time is reached or no events
// remain.
func (tl *Timeline) Run() {
	tl.evtMgr.Run(tl.StopTime)
}

// Package bridge streams live simulation frames to websocket observers.
// Frames flow one way: observers listen, they never steer.
package bridge

import (
	"github.com/Rotty13/llm-sim-sub001/internal/action"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
)

// Frame types.
const (
	FrameInstruction = "instruction"
	FrameEvent       = "event"
)

// Frame is the wire shape pushed to observers: one frame per executed
// instruction and one per recorded event.
type Frame struct {
	Type        string `json:"type"`
	Tick        int    `json:"tick"`
	Persona     string `json:"persona,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// InstructionFrame wraps one executed instruction.
func InstructionFrame(name string, tick int, in action.Instruction) Frame {
	return Frame{
		Type:        FrameInstruction,
		Tick:        tick,
		Persona:     name,
		Instruction: in.String(),
	}
}

// EventFrame wraps one recorded event.
func EventFrame(e events.Event) Frame {
	return Frame{
		Type:        FrameEvent,
		Tick:        e.Tick,
		Persona:     e.Persona,
		Category:    e.Category,
		Description: e.Description,
	}
}

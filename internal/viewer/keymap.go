package viewer

import (
	"fmt"

	"museumbot/internal/protocol"
)

// Binding ties one key (by ebiten key name) to a command. Held bindings act every frame the
// key is down; the rest fire on the press edge only.
type Binding struct {
	Key     string
	Command protocol.Command
	Held    bool
	Help    string
}

// DefaultBindings is the desktop key map.
var DefaultBindings = []Binding{
	{Key: "W", Command: protocol.MoveForward, Held: true, Help: "move forward"},
	{Key: "S", Command: protocol.MoveBackward, Held: true, Help: "move backward"},
	{Key: "A", Command: protocol.StrafeLeft, Held: true, Help: "strafe left"},
	{Key: "D", Command: protocol.StrafeRight, Held: true, Help: "strafe right"},
	{Key: "C", Command: protocol.MoveUp, Held: true, Help: "move up"},
	{Key: "Z", Command: protocol.MoveDown, Held: true, Help: "move down"},
	{Key: "Q", Command: protocol.RotateCCW, Held: true, Help: "rotate left"},
	{Key: "R", Command: protocol.RotateCW, Held: true, Help: "rotate right"},
	{Key: "E", Command: protocol.StartScan, Help: "scan nearby exhibit"},
	{Key: "Escape", Command: protocol.CancelOrHide, Help: "cancel scan / hide info"},
	{Key: "F", Command: protocol.CancelOrHide, Help: "cancel scan / hide info"},
	{Key: "T", Command: protocol.TeleportRandom, Help: "teleport to random spot"},
	{Key: "P", Command: protocol.TogglePatrol, Help: "toggle patrol"},
	{Key: "X", Command: protocol.Quit, Help: "quit"},
}

// KeyState answers whether a named key is down this frame, and whether it went down this frame.
type KeyState interface {
	Down(key string) bool
	JustPressed(key string) bool
}

// Sample turns one frame of key state into an Input.
func Sample(bindings []Binding, ks KeyState) protocol.Input {
	var in protocol.Input
	for _, b := range bindings {
		if b.Held {
			if ks.Down(b.Key) {
				in.Held = in.Held.With(b.Command)
			}
			continue
		}
		if ks.JustPressed(b.Key) {
			in.Pressed = in.Pressed.With(b.Command)
		}
	}
	return in
}

// HelpLines is the control help text, one key per line. Keys sharing a command are merged.
func HelpLines(bindings []Binding) []string {
	type entry struct {
		keys string
		help string
	}
	var order []protocol.Command
	byCmd := map[protocol.Command]*entry{}
	for _, b := range bindings {
		if e, ok := byCmd[b.Command]; ok {
			e.keys += "/" + b.Key
			continue
		}
		byCmd[b.Command] = &entry{keys: b.Key, help: b.Help}
		order = append(order, b.Command)
	}
	out := make([]string, 0, len(order))
	for _, c := range order {
		e := byCmd[c]
		out = append(out, fmt.Sprintf("%-8s %s", e.keys, e.help))
	}
	return out
}

package protocol

import (
	"fmt"
	"math/bits"
	"strings"
)

const Version = "1.0"

// Command is one input the windowing collaborator can report. Commands carry no payload;
// the coordinator only sees whether each one is held or was pressed this frame.
type Command uint8

const (
	MoveForward Command = iota
	MoveBackward
	StrafeLeft
	StrafeRight
	MoveUp
	MoveDown
	RotateCW
	RotateCCW
	StartScan
	CancelOrHide
	TeleportRandom
	Quit
	TogglePatrol

	numCommands
)

var commandNames = [numCommands]string{
	MoveForward:    "MOVE_FORWARD",
	MoveBackward:   "MOVE_BACKWARD",
	StrafeLeft:     "STRAFE_LEFT",
	StrafeRight:    "STRAFE_RIGHT",
	MoveUp:         "MOVE_UP",
	MoveDown:       "MOVE_DOWN",
	RotateCW:       "ROTATE_CW",
	RotateCCW:      "ROTATE_CCW",
	StartScan:      "START_SCAN",
	CancelOrHide:   "CANCEL_OR_HIDE",
	TeleportRandom: "TELEPORT_RANDOM",
	Quit:           "QUIT",
	TogglePatrol:   "TOGGLE_PATROL",
}

func (c Command) String() string {
	if c >= numCommands {
		return fmt.Sprintf("COMMAND(%d)", uint8(c))
	}
	return commandNames[c]
}

func ParseCommand(s string) (Command, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range commandNames {
		if name == s {
			return Command(i), nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// AllCommands lists every command in canonical order.
func AllCommands() []Command {
	out := make([]Command, 0, numCommands)
	for c := Command(0); c < numCommands; c++ {
		out = append(out, c)
	}
	return out
}

// CommandSet is a bit set of commands.
type CommandSet uint16

func SetOf(cmds ...Command) CommandSet {
	var s CommandSet
	for _, c := range cmds {
		s = s.With(c)
	}
	return s
}

func (s CommandSet) Has(c Command) bool { return c < numCommands && s&(1<<c) != 0 }

func (s CommandSet) With(c Command) CommandSet {
	if c >= numCommands {
		return s
	}
	return s | 1<<c
}

func (s CommandSet) Len() int { return bits.OnesCount16(uint16(s)) }

// Names returns the set members in canonical order.
func (s CommandSet) Names() []string {
	if s == 0 {
		return nil
	}
	out := make([]string, 0, s.Len())
	for c := Command(0); c < numCommands; c++ {
		if s.Has(c) {
			out = append(out, c.String())
		}
	}
	return out
}

func ParseCommandSet(names []string) (CommandSet, error) {
	var s CommandSet
	for _, n := range names {
		c, err := ParseCommand(n)
		if err != nil {
			return 0, err
		}
		s = s.With(c)
	}
	return s, nil
}

// Input is one frame of sampled input. Held commands act continuously for the frame's dt;
// Pressed commands fire once.
type Input struct {
	Held    CommandSet
	Pressed CommandSet
}

func (in Input) Empty() bool { return in.Held == 0 && in.Pressed == 0 }

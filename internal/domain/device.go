package domain

import (
	"fmt"
	"strings"
)

// Channel is one of the relay's controllable output lines.
type Channel string

const (
	ChannelD1 Channel = "d1"
	ChannelD2 Channel = "d2"
)

// State is the desired position of a channel.
type State string

const (
	StateOn  State = "on"
	StateOff State = "off"
)

func Channels() []Channel {
	return []Channel{ChannelD1, ChannelD2}
}

func States() []State {
	return []State{StateOn, StateOff}
}

func ParseChannel(s string) (Channel, error) {
	for _, ch := range Channels() {
		if Channel(s) == ch {
			return ch, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

func ParseState(s string) (State, error) {
	for _, st := range States() {
		if State(s) == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// ActionURL builds the device endpoint for a channel/state pair:
// <base>/<channel>/<state>.
func ActionURL(base string, ch Channel, st State) string {
	return strings.TrimSuffix(base, "/") + "/" + string(ch) + "/" + string(st)
}

// ParseActionURL accepts a URL only if it is exactly one of the device's
// known action endpoints. Anything else, including a well-formed URL on a
// different host, is rejected.
func ParseActionURL(base, raw string) (Channel, State, error) {
	for _, ch := range Channels() {
		for _, st := range States() {
			if raw == ActionURL(base, ch, st) {
				return ch, st, nil
			}
		}
	}
	return "", "", fmt.Errorf("%q is not an action on device %s", raw, base)
}

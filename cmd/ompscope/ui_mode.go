package main

import (
	"fmt"
	"os"
	"strings"
)

// toggle is an auto|on|off switch shared by --ui and --color.
type toggle uint8

const (
	toggleAuto toggle = iota
	toggleOn
	toggleOff
)

var toggleNames = [...]string{
	toggleAuto: "auto",
	toggleOn:   "on",
	toggleOff:  "off",
}

func (t toggle) String() string {
	if int(t) < len(toggleNames) {
		return toggleNames[t]
	}
	return "auto"
}

// parseToggle accepts auto|on|off in any case; an empty value means auto.
func parseToggle(flag, value string) (toggle, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return toggleAuto, nil
	}
	for i, name := range toggleNames {
		if v == name {
			return toggle(i), nil
		}
	}
	return toggleAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// resolve decides an auto toggle by whether f is a terminal.
func (t toggle) resolve(f *os.File) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	}
	return isTerminal(f)
}

func readUIMode(value string) (toggle, error) {
	return parseToggle("ui", value)
}

func shouldUseTUI(mode toggle) bool {
	return mode.resolve(os.Stdout)
}

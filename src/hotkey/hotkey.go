// Package hotkey turns a global input gesture into a scan interrupt.
package hotkey

import (
	"context"
	"errors"
	"strconv"
	"strings"

	gohook "github.com/robotn/gohook"

	"artifact-scanner/src/logutil"
)

// ListenInterrupt calls onInterrupt once when the gesture is seen. An empty
// combo means a right mouse button press. The hook stops when ctx ends or
// the gesture fires.
func ListenInterrupt(ctx context.Context, combo string, onInterrupt func()) error {
	m, err := newMatcher(combo)
	if err != nil {
		return err
	}

	evChan := gohook.Start()
	if evChan == nil {
		return errors.New("hotkey: input hook unavailable")
	}
	logutil.Info(logutil.Fields{"gesture": m.String()}, "hotkey: interrupt armed")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logutil.Error(logutil.Fields{"panic": r}, "hotkey: listener crashed")
			}
		}()
		defer gohook.End()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				if m.feed(ev) {
					logutil.Info(logutil.Fields{"gesture": m.String()}, "hotkey: interrupt")
					if onInterrupt != nil {
						onInterrupt()
					}
					return
				}
			}
		}
	}()
	return nil
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// matcher tracks key state for one gesture. It is used from the listener
// goroutine only.
type matcher struct {
	combo string
	mouse bool
	keys  []keyState
}

func newMatcher(combo string) (*matcher, error) {
	if strings.TrimSpace(combo) == "" {
		return &matcher{mouse: true}, nil
	}
	m := &matcher{combo: combo}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, errors.New("hotkey: unknown key " + strconv.Quote(name) + " in " + strconv.Quote(combo))
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	return m, nil
}

func (m *matcher) String() string {
	if m.mouse {
		return "right mouse button"
	}
	return m.combo
}

// feed reports whether ev completes the gesture.
func (m *matcher) feed(ev gohook.Event) bool {
	if m.mouse {
		return ev.Kind == gohook.MouseDown && ev.Button == gohook.MouseMap["right"]
	}
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		m.set(ev.Rawcode, true)
		for _, k := range m.keys {
			if !k.pressed {
				return false
			}
		}
		for i := range m.keys {
			m.keys[i].pressed = false
		}
		return true
	case gohook.KeyUp:
		m.set(ev.Rawcode, false)
	}
	return false
}

func (m *matcher) set(rawcode uint16, pressed bool) {
	for i := range m.keys {
		for _, c := range m.keys[i].rawcodes {
			if c == rawcode {
				m.keys[i].pressed = pressed
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"pause":     {19},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes. Modifiers
// map to both the left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	switch keyName {
	case "win", "super":
		keyName = "cmd"
	}
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(keyName, "f")); err == nil && strings.HasPrefix(keyName, "f") && n >= 1 && n <= 24 {
		return []uint16{uint16(111 + n)} // VK_F1 is 112
	}
	return nil
}

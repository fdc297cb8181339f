package control

import (
	"github.com/go-vgo/robotgo"

	"artifact-scanner/src/geometry"
)

type robotInput struct{}

func (robotInput) move(p geometry.Point) { robotgo.Move(p.X, p.Y) }

func (robotInput) click() { robotgo.Click("left", false) }

func (robotInput) scroll(ticks int) {
	if ticks > 0 {
		robotgo.ScrollDir(ticks, "down")
		return
	}
	robotgo.ScrollDir(-ticks, "up")
}

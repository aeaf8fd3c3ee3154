package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{"escape quits", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}}, Event{Type: EventQuit}, true},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}}, Event{Type: EventKeyDown, Key: sdl.SCANCODE_W}, true},
		{"key repeat ignored", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}}, Event{}, false},
		{"key up ignored", &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}}, Event{}, false},
		{"resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600}, Event{Type: EventWindowResize, Width: 800, Height: 600}, true},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -2}, Event{Type: EventZoom, Zoom: -2}, true},
		{"drop", &sdl.DropEvent{Type: sdl.DROPFILE, File: "cube.obj"}, Event{Type: EventFileDrop, Path: "cube.obj"}, true},
		{"motion without drag", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 4, YRel: 2}, Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := New().translate(tt.event)
			if ok != tt.ok || got != tt.want {
				t.Errorf("translate() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDragFollowsLeftButton(t *testing.T) {
	in := New()
	motion := &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 3, YRel: -5}

	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT})
	got, ok := in.translate(motion)
	if !ok || got != (Event{Type: EventDrag, DX: 3, DY: -5}) {
		t.Errorf("drag while held = %+v, %v", got, ok)
	}

	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	if _, ok := in.translate(motion); ok {
		t.Error("motion after release should not drag")
	}
}

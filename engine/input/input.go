package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Frame is one raw sample of the devices the viewer reads.
type Frame struct {
	MouseX, MouseY   int
	LeftDown         bool
	LeftJustPressed  bool
	LeftJustReleased bool
	RightJustPressed bool
	ScrollY          float64
	Shift            bool
	PanX, PanY       float64 // -1..1 from WASD or arrows
	Pause, Step      bool
	ToggleRanges     bool
	TogglePaths      bool
	ToggleGrid       bool
	NextAttack       bool
	Quit             bool
}

// Poll samples ebiten for the current frame
func Poll() Frame {
	f := Frame{}
	f.MouseX, f.MouseY = ebiten.CursorPosition()
	f.LeftDown = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	f.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	f.LeftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	f.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	_, f.ScrollY = ebiten.Wheel()
	f.Shift = ebiten.IsKeyPressed(ebiten.KeyShift)

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		f.PanX--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		f.PanX++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		f.PanY--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		f.PanY++
	}

	f.Pause = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	f.Step = inpututil.IsKeyJustPressed(ebiten.KeyN)
	f.ToggleRanges = inpututil.IsKeyJustPressed(ebiten.KeyR)
	f.TogglePaths = inpututil.IsKeyJustPressed(ebiten.KeyP)
	f.ToggleGrid = inpututil.IsKeyJustPressed(ebiten.KeyG)
	f.NextAttack = inpututil.IsKeyJustPressed(ebiten.KeyTab)
	f.Quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	return f
}

// Gesture is what a mouse frame resolved to.
type Gesture uint8

const (
	GestureNone Gesture = iota
	GestureClick
	GestureBoxSelect
	GestureOrder
)

// InputState tracks drags across frames
type InputState struct {
	MouseX, MouseY int
	MouseDX        int
	MouseDY        int

	DragStartX, DragStartY int
	Dragging               bool
	DragThreshold          int
}

func NewInputState() *InputState {
	return &InputState{DragThreshold: 5}
}

// Apply folds a frame into the drag state and reports the finished gesture, if any.
func (s *InputState) Apply(f Frame) Gesture {
	s.MouseDX = f.MouseX - s.MouseX
	s.MouseDY = f.MouseY - s.MouseY
	s.MouseX, s.MouseY = f.MouseX, f.MouseY

	if f.RightJustPressed {
		s.Dragging = false
		return GestureOrder
	}
	if f.LeftJustPressed {
		s.DragStartX, s.DragStartY = f.MouseX, f.MouseY
		s.Dragging = false
	}
	if f.LeftDown && !s.Dragging {
		dx := f.MouseX - s.DragStartX
		dy := f.MouseY - s.DragStartY
		if dx*dx+dy*dy > s.DragThreshold*s.DragThreshold {
			s.Dragging = true
		}
	}
	if f.LeftJustReleased {
		wasDragging := s.Dragging
		s.Dragging = false
		if wasDragging {
			return GestureBoxSelect
		}
		return GestureClick
	}
	return GestureNone
}

// DragRect returns the selection rectangle if dragging
func (s *InputState) DragRect() (x1, y1, x2, y2 int, active bool) {
	if !s.Dragging {
		return 0, 0, 0, 0, false
	}
	return s.DragStartX, s.DragStartY, s.MouseX, s.MouseY, true
}

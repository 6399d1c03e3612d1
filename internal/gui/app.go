package gui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/scene"
)

// Theme Colors (Monochrome)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColFluid   = rl.NewColor(90, 150, 220, 200)
)

const (
	windowW = 1280
	windowH = 720
	// panelW is the text column to the right of the world.
	panelW = 300
	margin = 20
)

type App struct {
	registry  *scene.Registry
	seed      uint64
	session   *Session
	screen    Screen
	font      rl.Font
	inMenu    bool
	scenes    []string
	selected  int
	showDebug bool
	message   string
	quit      bool
}

// initWindow opens a 1280x720 window at 60 FPS with the default exit key disabled.
func initWindow() {
	rl.InitWindow(windowW, windowH, "rubble")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when present; raylib falls back to its
// built-in font otherwise.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func newApp(reg *scene.Registry, seed uint64) *App {
	return &App{
		registry:  reg,
		seed:      seed,
		font:      loadFont(),
		inMenu:    true,
		scenes:    reg.List(),
		showDebug: true,
	}
}

// RunInteractive opens the window on a scene picker.
func RunInteractive(reg *scene.Registry, seed uint64) error {
	initWindow()
	defer rl.CloseWindow()
	a := newApp(reg, seed)
	a.RunLoop()
	return nil
}

// Run opens the window directly on the named scene.
func Run(reg *scene.Registry, name string, seed uint64) error {
	sc, err := reg.Get(name)
	if err != nil {
		return err
	}
	initWindow()
	defer rl.CloseWindow()
	a := newApp(reg, seed)
	if err := a.load(sc); err != nil {
		return err
	}
	a.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) load(sc scene.Scene) error {
	s, err := NewSession(sc, a.seed)
	if err != nil {
		return err
	}
	w := s.World()
	a.session = s
	a.screen = NewScreen(margin, margin, windowW-panelW-2*margin, windowH-2*margin, w.Width(), w.Height())
	a.inMenu = false
	a.message = ""
	return nil
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}

	if a.inMenu {
		a.updateMenu()
		return
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.inMenu = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.session.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.session.StepOnce()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.session.Reset(); err != nil {
			a.message = err.Error()
		}
	}
	if rl.IsKeyPressed(rl.KeyD) {
		a.showDebug = !a.showDebug
	}

	elapsed := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	a.session.Advance(elapsed)
	if a.session.Halted {
		a.message = dynamo.ErrInvalidState.Error()
	}
}

func (a *App) updateMenu() {
	if len(a.scenes) == 0 {
		return
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.selected = (a.selected + 1) % len(a.scenes)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.selected = (a.selected - 1 + len(a.scenes)) % len(a.scenes)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		sc, err := a.registry.Get(a.scenes[a.selected])
		if err == nil {
			err = a.load(sc)
		}
		if err != nil {
			a.message = err.Error()
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.inMenu {
		a.drawMenu()
	} else {
		a.drawWorld()
		a.drawHUD()
	}

	rl.EndDrawing()
}

// drawWorld draws the walls, then links, then particles on top. Contacts
// last a single step and are drawn faint.
func (a *App) drawWorld() {
	w := a.session.World()
	x0, y0 := a.screen.Project(dynamo.V(0, w.Height()))
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(a.screen.Length(w.Width())), int32(a.screen.Length(w.Height())), ColGrid)

	for _, c := range w.Constraints() {
		var end dynamo.Vec2
		col := ColText
		switch c.Kind {
		case physics.KindDistance:
			end = c.B.Pos
		case physics.KindPoint:
			end = c.Anchor
		case physics.KindContact:
			end = c.B.Pos
			col = ColTextDim
		default:
			continue
		}
		ax, ay := a.screen.Project(c.A.Pos)
		bx, by := a.screen.Project(end)
		rl.DrawLineV(rl.NewVector2(ax, ay), rl.NewVector2(bx, by), col)
	}

	for _, p := range w.Particles() {
		x, y := a.screen.Project(p.Pos)
		r := max(a.screen.Length(p.Radius), 1)
		switch {
		case p.Fluid:
			rl.DrawCircleV(rl.NewVector2(x, y), r, ColFluid)
		case p.Fixed:
			rl.DrawCircleLines(int32(x), int32(y), r, ColSelect)
		default:
			rl.DrawCircleV(rl.NewVector2(x, y), r, ColAccent)
		}
	}
}

func (a *App) drawHUD() {
	w := a.session.World()
	px := windowW - panelW
	a.drawText("rubble", px, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.session.Scene().Name), px, 60, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	if a.session.Paused() {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, px, 90, 16, col)

	if a.showDebug {
		rows := []string{
			fmt.Sprintf("steps        %d", w.Steps()),
			fmt.Sprintf("time         %.2fs", w.Time()),
			fmt.Sprintf("dt           %.4fs", w.TimeStep()),
			fmt.Sprintf("particles    %d", w.ParticleCount()),
			fmt.Sprintf("constraints  %d", w.ConstraintCount()),
			fmt.Sprintf("contacts     %d", len(w.Collisions())),
		}
		for i, r := range rows {
			a.drawText(r, px, 130+22*i, 14, ColText)
		}
	}
	if a.message != "" {
		a.drawText(a.message, px, 300, 14, rl.Red)
	}

	a.drawText("[SPACE] PAUSE  [S] STEP  [R] RESET", px, 650, 14, ColTextDim)
	a.drawText("[D] DEBUG  [ESC] MENU  [Q] QUIT", px, 670, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), px, 690, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawMenu() {
	a.drawText("rubble", 50, 50, 40, ColSelect)
	a.drawText("Select Scene", 50, 100, 16, ColTextDim)

	limit := 18
	startIdx := 0
	if a.selected >= limit {
		startIdx = a.selected - limit + 1
	}

	y := 160
	for i := startIdx; i < len(a.scenes) && i < startIdx+limit; i++ {
		name := a.scenes[i]
		if i == a.selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.message != "" {
		a.drawText(a.message, 50, 660, 14, rl.Red)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}

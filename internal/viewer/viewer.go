// Package viewer shows a gap buffer's physical layout in a terminal and
// edits it from the keyboard.
package viewer

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/engine/snapshot"
	"github.com/amin-mir/gap-buffer/internal/logging"
)

var (
	styleElem   = tcell.StyleDefault
	styleGap    = tcell.StyleDefault.Reverse(true)
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Viewer draws a buffer of string elements on a tcell screen.
type Viewer struct {
	screen  tcell.Screen
	buf     *gapbuffer.GapBuffer[string]
	logger  *logging.Logger
	message string
}

// New creates a viewer. The caller owns the screen and must have
// initialized it.
func New(screen tcell.Screen, buf *gapbuffer.GapBuffer[string], logger *logging.Logger) *Viewer {
	if logger == nil {
		logger = logging.Null()
	}
	return &Viewer{
		screen: screen,
		buf:    buf,
		logger: logger.WithComponent("viewer"),
	}
}

// Message returns the last status message.
func (v *Viewer) Message() string {
	return v.message
}

// Run draws the buffer and handles events until the user quits, the
// screen is finalized or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
		}
		v.Draw()
	}
}

// HandleKey applies one key press and reports whether the viewer should
// quit.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	pos := v.buf.Position()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		if pos > 0 {
			v.move(pos - 1)
		}
	case tcell.KeyRight:
		if pos < v.buf.Len() {
			v.move(pos + 1)
		}
	case tcell.KeyHome:
		v.move(0)
	case tcell.KeyEnd:
		v.move(v.buf.Len())
	case tcell.KeyDelete:
		v.remove()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if pos > 0 {
			v.move(pos - 1)
			v.remove()
		}
	case tcell.KeyRune:
		s := string(ev.Rune())
		v.buf.Insert(s)
		v.message = "inserted " + s
	}
	return false
}

func (v *Viewer) move(idx int) {
	if err := v.buf.SetPosition(idx); err != nil {
		// Unreachable for keys, which stay within [0, Len].
		v.logger.Error("move: %v", err)
		v.message = err.Error()
		return
	}
	v.message = fmt.Sprintf("cursor at %d", idx)
}

func (v *Viewer) remove() {
	if s, ok := v.buf.Remove(); ok {
		v.message = "removed " + s
		return
	}
	v.message = "nothing to remove"
}

// Draw renders the current layout and shows it.
func (v *Viewer) Draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	drawText(v.screen, 0, 0, "gap buffer  (arrows move, del/backspace remove, esc quits)", styleTitle)

	l := snapshot.Take(v.buf)
	cursorX, cursorY := 0, 2
	for i, p := range place(tokens(l), width, 2) {
		style := styleElem
		if p.kind == tokenGap {
			style = styleGap
		}
		drawText(v.screen, p.x, p.y, p.text, style)
		if i == l.GapStart {
			cursorX, cursorY = p.x, p.y
		}
	}
	if l.GapLen() == 0 {
		// No gap slot to point at; put the cursor after the prefix.
		cursorX, cursorY = cursorAfterPrefix(l, width)
	}
	v.screen.ShowCursor(cursorX, cursorY)

	status := fmt.Sprintf("len %d  cap %d  gap [%d, %d)", l.Len, l.Cap, l.GapStart, l.GapEnd)
	if v.message != "" {
		status += "  " + v.message
	}
	drawText(v.screen, 0, height-1, status, styleStatus)
	v.screen.Show()
}

func cursorAfterPrefix(l snapshot.Layout, width int) (int, int) {
	prefix := make([]token, 0, len(l.Prefix))
	for _, s := range l.Prefix {
		prefix = append(prefix, elemToken(s))
	}
	placedPrefix := place(prefix, width, 2)
	if len(placedPrefix) == 0 {
		return 0, 2
	}
	last := placedPrefix[len(placedPrefix)-1]
	return last.x + last.width + 1, last.y
}

// drawText writes s one grapheme cluster at a time.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		runes := []rune(cluster)
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
}

package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/nsf/termbox-go"
)

//
// The live casstop screen. One goroutine feeds termbox events into a
// channel, the main loop redraws on a ticker and handles keys, the same
// shape a terminal cluster monitor usually has.
//

// Screen - the interactive display
type Screen struct {
	monitor  *Monitor
	interval time.Duration
}

// NewScreen - creates the interactive display
func NewScreen(monitor *Monitor, interval time.Duration) *Screen {

	return &Screen{
		monitor:  monitor,
		interval: interval,
	}
}

// Run - blocks until the user quits
func (s *Screen) Run() error {

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	s.draw()

	ticker := time.NewTicker(s.interval)
	defer func() { ticker.Stop() }()

	for {
		select {
		case <-ticker.C:
			s.draw()
		case event := <-events:
			if event.Type != termbox.EventKey {
				continue
			}
			switch {
			case event.Ch == 'q' || event.Key == termbox.KeyCtrlQ || event.Key == termbox.KeyCtrlC:
				return nil
			case event.Ch == '+':
				s.interval += time.Second
				ticker.Stop()
				ticker = time.NewTicker(s.interval)
			case event.Ch == '-' && s.interval > time.Second:
				s.interval -= time.Second
				ticker.Stop()
				ticker = time.NewTicker(s.interval)
			}
		}
	}
}

func (s *Screen) draw() {

	rows := s.monitor.Poll()

	termbox.Clear(termbox.ColorWhite, termbox.ColorBlack)

	printTb(0, 0, termbox.ColorWhite|termbox.AttrBold, termbox.ColorBlack|termbox.AttrReverse,
		fmt.Sprintf("casstop - %d nodes - refresh %ds - q quits, +/- adjust", len(rows), int(s.interval.Seconds())))

	printTb(0, 2, termbox.ColorWhite|termbox.AttrBold, termbox.ColorBlack, strings.TrimRight(Header(), "\n"))

	y := 3
	for _, row := range rows {
		fg := termbox.ColorGreen
		if !row.Up {
			fg = termbox.ColorRed
		} else if row.OperationMode != "NORMAL" {
			fg = termbox.ColorYellow
		}
		printTb(0, y, fg, termbox.ColorBlack, strings.TrimRight(FormatRow(row), "\n"))
		y++
	}

	termbox.Flush()
}

func printTb(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}

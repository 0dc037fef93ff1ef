package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
	"github.com/casstools/casstools/lib/opserr"
)

//
// The live repair status screen. A background poller refreshes the status
// rows, the termbox loop redraws them with an age based coloring: a repair
// that has not reported progress for hours is in trouble.
//

const (
	watchDefaultDelay = 5 * time.Second

	ageWarning = 2 * time.Hour
	ageBad     = 4 * time.Hour
)

// Watch - the live repair status screen
type Watch struct {
	backend Backend
	logger  *logh.ContextualLogger

	mtx      sync.Mutex
	statuses []NodeStatus
	delay    time.Duration
}

// NewWatch - creates the status screen over the given backend
func NewWatch(backend Backend) *Watch {

	return &Watch{
		backend: backend,
		delay:   watchDefaultDelay,
		logger:  logh.CreateContextualLogger(constants.StringsPKG, "scheduler"),
	}
}

// Run - blocks until the user quits
func (w *Watch) Run() error {

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	done := make(chan struct{})
	defer close(done)
	go w.pollLoop(done)

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	w.draw()

	for {
		select {
		case <-ticker.C:
			w.draw()
		case event := <-events:
			if event.Type != termbox.EventKey {
				continue
			}
			switch {
			case event.Ch == 'q' || event.Key == termbox.KeyCtrlQ || event.Key == termbox.KeyCtrlC:
				return nil
			case event.Ch == '+':
				w.adjustDelay(time.Second)
			case event.Ch == '-':
				w.adjustDelay(-time.Second)
			}
		}
	}
}

// pollLoop - refreshes the status rows every delay; a failed read is
// logged and retried after a short pause
func (w *Watch) pollLoop(done chan struct{}) {

	for {
		statuses, gerr := w.backend.AllStatuses()
		if gerr != nil {
			opserr.Log(gerr)
			select {
			case <-done:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		w.mtx.Lock()
		w.statuses = statuses
		delay := w.delay
		w.mtx.Unlock()

		select {
		case <-done:
			return
		case <-time.After(delay):
		}
	}
}

func (w *Watch) adjustDelay(by time.Duration) {

	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.delay+by >= time.Second {
		w.delay += by
	}
}

func (w *Watch) draw() {

	w.mtx.Lock()
	statuses := make([]NodeStatus, len(w.statuses))
	copy(statuses, w.statuses)
	delay := w.delay
	w.mtx.Unlock()

	running, completed := splitStatuses(statuses)

	termbox.Clear(termbox.ColorWhite, termbox.ColorBlack)

	printTb(0, 1, termbox.ColorWhite, termbox.ColorBlack,
		fmt.Sprintf("Running: %3d  Complete: %3d          Refresh: %ds", len(running), len(completed), int(delay.Seconds())))

	printTb(0, 3, termbox.ColorWhite|termbox.AttrBold, termbox.ColorBlack,
		fmt.Sprintf("%-35s %-20s %s", "Hostname", "Status", "Time since last update"))

	_, height := termbox.Size()

	y := 4
	now := time.Now()
	for _, status := range append(running, completed...) {
		if y > height-1 {
			break
		}

		age := now.Sub(status.UpdatedAt)
		printTb(0, y, statusColor(status, age), termbox.ColorBlack,
			fmt.Sprintf("%-35s %-20s %s", status.Node, status.Status, formatAge(age)))
		y++
	}

	termbox.Flush()
}

// splitStatuses - running rows first, both halves oldest update first
func splitStatuses(statuses []NodeStatus) ([]NodeStatus, []NodeStatus) {

	var running, completed []NodeStatus

	for _, status := range statuses {
		if status.Status == StatusCompleted {
			completed = append(completed, status)
		} else {
			running = append(running, status)
		}
	}

	byUpdate := func(statuses []NodeStatus) func(int, int) bool {
		return func(i, j int) bool {
			return statuses[i].UpdatedAt.Before(statuses[j].UpdatedAt)
		}
	}

	sort.Slice(running, byUpdate(running))
	sort.Slice(completed, byUpdate(completed))

	return running, completed
}

func statusColor(status NodeStatus, age time.Duration) termbox.Attribute {

	if status.Status == StatusCompleted {
		return termbox.ColorGreen
	}

	switch {
	case age > ageBad:
		return termbox.ColorRed
	case age > ageWarning:
		return termbox.ColorYellow
	default:
		return termbox.ColorGreen
	}
}

// formatAge - human readable age, growing through the units
func formatAge(age time.Duration) string {

	value := age.Seconds()
	if value < 60 {
		return fmt.Sprintf("%0.2f seconds", value)
	}

	value /= 60
	if value < 60 {
		return fmt.Sprintf("%0.2f minutes", value)
	}

	value /= 60
	if value < 24 {
		return fmt.Sprintf("%0.2f hours", value)
	}

	return fmt.Sprintf("%0.2f days", value/24)
}

func printTb(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}

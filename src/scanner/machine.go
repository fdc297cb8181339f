// Package scanner drives the inventory scan: navigate to an item, capture its
// regions, recognize them, parse and validate, then accept, retry or skip.
package scanner

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/control"
	"artifact-scanner/src/geometry"
	"artifact-scanner/src/layout"
	"artifact-scanner/src/logutil"
	"artifact-scanner/src/messages"
	"artifact-scanner/src/ocr"
	"artifact-scanner/src/screenshot"
	"artifact-scanner/src/worker"
)

// State names a step of the scan.
type State string

const (
	StateIdle        State = "idle"
	StateNavigating  State = "navigating"
	StateCapturing   State = "capturing"
	StateRecognizing State = "recognizing"
	StateValidating  State = "validating"
	StateAccepted    State = "accepted"
	StateRetrying    State = "retrying"
	StateSkipped     State = "skipped"
	StateCompleted   State = "completed"
	StateAborted     State = "aborted"
)

const (
	// DefaultMaxCount is the inventory capacity.
	DefaultMaxCount   = 2100
	DefaultStallLimit = 5

	// maxAlignTicks bounds the single-tick scrolls that line the grid up
	// with the scroll flag after a page scroll.
	maxAlignTicks = 25
	// flagTolerance is a squared RGB distance, within 10 of the reference.
	flagTolerance = 100

	switchPoll = 30 * time.Millisecond
	// confirmClicks is how many clicks a new cell gets before a reference
	// that never changed is put down to an identical item.
	confirmClicks = 2
)

// RecordParser turns one item's readings into a validated record.
type RecordParser interface {
	Parse(artifact.Readings) (artifact.Artifact, error)
}

// Deps are the capabilities a Machine drives. Parser, Observer and Clock
// are optional.
type Deps struct {
	Capturer   screenshot.Capturer
	Controller control.Controller
	Recognizer ocr.Recognizer
	Parser     RecordParser
	Observer   Observer
	Clock      Clock
}

type Options struct {
	Layout layout.Layout

	Threshold  float64
	MaxRetries int
	StallLimit int

	MinRarity int
	MinLevel  int

	// DuplicateLimit consecutive identical records abort the scan. Zero
	// means the grid column count.
	DuplicateLimit   int
	IgnoreDuplicates bool

	// MaxItems caps the item count read from the inventory header.
	MaxItems int
	MaxCount int

	BaseDelay        time.Duration
	FastMode         bool
	ScrollDelay      time.Duration
	SwitchTimeout    time.Duration
	CaptureTimeout   time.Duration
	RecognizeTimeout time.Duration
	Workers          int
}

// Progress is a snapshot of a running scan.
type Progress struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Accepted  int    `json:"accepted"`
	Skipped   int    `json:"skipped"`
	Filtered  int    `json:"filtered"`
}

// Machine runs scans. Run must not be called concurrently; Progress may be
// called from any goroutine.
type Machine struct {
	deps Deps
	opts Options

	mu       sync.Mutex
	progress Progress
}

func New(deps Deps, opts Options) (*Machine, error) {
	if deps.Capturer == nil || deps.Controller == nil || deps.Recognizer == nil {
		return nil, errors.New("scanner: capturer, controller and recognizer are required")
	}
	if deps.Parser == nil {
		deps.Parser = artifact.Parser{Threshold: opts.Threshold}
	}
	if deps.Observer == nil {
		deps.Observer = ObserverFunc(func(messages.Event) {})
	}
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if opts.StallLimit <= 0 {
		opts.StallLimit = DefaultStallLimit
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxCount
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.DuplicateLimit <= 0 {
		opts.DuplicateLimit = opts.Layout.Grid().Cols
	}
	return &Machine{deps: deps, opts: opts, progress: Progress{State: StateIdle}}, nil
}

func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Run scans until the item count is reached, the end of the list shows up,
// the context is cancelled or a fatal error occurs. The report always
// carries the records accepted so far.
func (m *Machine) Run(ctx context.Context) Report {
	s := &scan{
		m:       m,
		deps:    m.deps,
		opts:    m.opts,
		delay:   NewAdaptiveDelay(m.opts.BaseDelay, m.opts.FastMode),
		entropy: ulid.Monotonic(rand.Reader, 0),
		state:   StateIdle,
	}
	s.report = Report{
		SessionID: uuid.NewString(),
		Stats:     ErrorStat{},
		SkippedBy: map[Category]int{},
		Started:   s.deps.Clock.Now(),
	}
	s.publish()

	s.pool = worker.New(m.opts.Workers, m.deps.Recognizer)
	defer s.pool.Close()

	err := s.run(ctx)
	return s.finish(err)
}

// scan is the state of one Run. It is owned by the Run goroutine.
type scan struct {
	m    *Machine
	deps Deps
	opts Options

	layout  layout.Layout
	pool    *worker.Pool
	reader  *Reader
	delay   *AdaptiveDelay
	entropy io.Reader
	report  Report
	timings []time.Duration

	state State
	item  int
	flag  *color.RGBA

	prevRef string
	hasRef  bool
	cell    geometry.Point
	hasCell bool
	// unchanged counts consecutive items reached without the reference
	// changing.
	unchanged int
	prev      *artifact.Artifact
	dups      int
}

func (s *scan) run(ctx context.Context) error {
	if err := s.start(ctx); err != nil {
		return err
	}

	grid := s.layout.Grid()
	startRow := 0
	for s.report.Processed < s.report.Total {
		for row := startRow; row < grid.Rows; row++ {
			for col := 0; col < grid.Cols; col++ {
				if s.report.Processed >= s.report.Total {
					return nil
				}
				end, err := s.scanItem(ctx, grid.CellCenter(row, col))
				if err != nil {
					return err
				}
				if end {
					logutil.Info(logutil.Fields{"session_id": s.report.SessionID, "item": s.item}, "scan: end of list")
					return nil
				}
			}
		}
		if s.report.Processed >= s.report.Total {
			break
		}
		// The last page only scrolls as many rows as are left, so the
		// remaining items sit at the bottom of the grid.
		remainRows := (s.report.Total - s.report.Processed + grid.Cols - 1) / grid.Cols
		scrollRows := min(remainRows, grid.Rows)
		startRow = grid.Rows - scrollRows
		if err := s.scroll(ctx, scrollRows); err != nil {
			return err
		}
	}
	return nil
}

// start brings the window up, resolves the layout and reads the item count.
func (s *scan) start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancelledError{Err: err}
	}
	ctrl := s.deps.Controller
	if err := ctrl.Activate(ctx); err != nil {
		return err
	}
	win, err := ctrl.WindowRect(ctx)
	if err != nil {
		return err
	}
	lay, err := s.opts.Layout.Resolve(win)
	if err != nil {
		return err
	}
	if err := lay.Validate(layout.Required); err != nil {
		return err
	}
	s.layout = lay
	s.reader = &Reader{
		Capturer:         s.deps.Capturer,
		Pool:             s.pool,
		Layout:           lay,
		CaptureTimeout:   s.opts.CaptureTimeout,
		RecognizeTimeout: s.opts.RecognizeTimeout,
	}

	s.report.Total = s.readTotal(ctx)
	s.publish()
	logutil.Info(logutil.Fields{
		"session_id": s.report.SessionID,
		"window":     win.String(),
		"total":      s.report.Total,
	}, "scan: started")

	if p, ok := lay.Sample(layout.SampleScrollFlag); ok {
		c, err := screenshot.Color(ctx, s.deps.Capturer, p)
		if err != nil {
			logutil.Warn(logutil.Fields{"error": err}, "scan: scroll flag unreadable, alignment disabled")
		} else {
			s.flag = &c
		}
	}
	return ctx.Err()
}

// readTotal returns the item count from the inventory header, capped at
// MaxCount and MaxItems. An unreadable header falls back to MaxCount and the
// end-of-list sentinel.
func (s *scan) readTotal(ctx context.Context) int {
	total := s.opts.MaxCount
	text, err := s.reader.Text(ctx, layout.InventoryCount)
	if err == nil {
		var n int
		if n, err = artifact.ParseCount(text); err == nil {
			total = min(n, s.opts.MaxCount)
		}
	}
	if err != nil {
		logutil.Warn(logutil.Fields{"error": err}, "scan: item count unreadable")
	}
	if s.opts.MaxItems > 0 && s.opts.MaxItems < total {
		total = s.opts.MaxItems
	}
	return total
}

// scanItem navigates to the cell at p and reads the item there until it is
// accepted, filtered or skipped. end reports the empty-item sentinel.
func (s *scan) scanItem(ctx context.Context, p geometry.Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &CancelledError{Err: err}
	}
	s.item++
	started := s.deps.Clock.Now()

	s.setState(StateNavigating)
	if err := s.navigate(ctx, p); err != nil {
		return false, err
	}

	s.delay.ResetItem()
	retries := 0
	for attempt := 1; ; attempt++ {
		s.setState(StateCapturing)
		delay := s.delay.Current()
		if err := s.deps.Clock.Sleep(ctx, delay); err != nil {
			return false, &CancelledError{Err: err}
		}

		var rec artifact.Artifact
		rd, err := s.reader.Capture(ctx)
		if err == nil {
			s.setState(StateRecognizing)
			err = s.reader.Recognize(ctx, &rd)
		}
		if err == nil {
			s.setState(StateValidating)
			if isSentinel(rd) {
				return true, nil
			}
			s.delay.Observe(s.confident(rd))
			rec, err = s.deps.Parser.Parse(rd)
		}
		if err == nil {
			return false, s.accept(rec, attempt, started, delay)
		}

		cat, sev := Classify(err)
		if sev == SeverityFatal {
			return false, err
		}
		s.count(cat, attempt, err)
		if sev == SeveritySkip {
			s.skip(cat, err)
			return false, nil
		}
		retries++
		if retries >= s.opts.MaxRetries {
			s.skip(cat, err)
			return false, nil
		}
		s.setState(StateRetrying)
	}
}

// navigate clicks p until the reference region changes. Two items that look
// the same leave the reference alone, so a new cell that still matches after
// confirmClicks clicks is taken as reached and its record goes through the
// duplicate guard. A full page of such cells means the window stopped
// responding. Clicks on the cell the scan already stands on count as stalls.
func (s *scan) navigate(ctx context.Context, p geometry.Point) error {
	moved := !s.hasCell || p != s.cell
	stalls := 0
	for {
		if err := ctx.Err(); err != nil {
			return &CancelledError{Err: err}
		}
		if err := s.deps.Controller.MoveAndClick(ctx, p); err != nil {
			return err
		}
		s.invalidate()

		ref, changed, err := s.waitSwitch(ctx)
		if err != nil {
			return err
		}
		if changed {
			s.prevRef, s.hasRef = ref, ref != ""
			s.cell, s.hasCell = p, true
			s.unchanged = 0
			return nil
		}
		stalls++
		logutil.Debug(logutil.Fields{"session_id": s.report.SessionID, "item": s.item, "stalls": stalls, "reference": ref}, "scan: navigation stalled")
		if moved && stalls >= confirmClicks {
			s.cell, s.hasCell = p, true
			s.unchanged++
			grid := s.layout.Grid()
			if s.unchanged >= grid.Rows*grid.Cols {
				return &NavigationStuckError{Attempts: s.unchanged, Reference: ref}
			}
			logutil.Debug(logutil.Fields{"session_id": s.report.SessionID, "item": s.item, "unchanged": s.unchanged}, "scan: reference unchanged on a new cell, reading it as a lookalike")
			return nil
		}
		if stalls >= s.opts.StallLimit {
			return &NavigationStuckError{Attempts: stalls, Reference: ref}
		}
	}
}

// waitSwitch polls the reference region until it differs from the previous
// item or SwitchTimeout passes. An unreadable or empty reference cannot be
// compared and counts as changed.
func (s *scan) waitSwitch(ctx context.Context) (string, bool, error) {
	deadline := s.deps.Clock.Now().Add(s.opts.SwitchTimeout)
	for {
		text, err := s.reader.Text(ctx, layout.ItemCounter)
		if err != nil {
			if cat, _ := Classify(err); cat == CategoryCancelled {
				return "", false, err
			}
			logutil.Debug(logutil.Fields{"error": err}, "scan: reference unreadable")
			return "", true, nil
		}
		ref := artifact.Normalize(text)
		if !s.hasRef || ref == "" || ref != s.prevRef {
			return ref, true, nil
		}
		if !s.deps.Clock.Now().Before(deadline) {
			return ref, false, nil
		}
		if err := s.deps.Clock.Sleep(ctx, switchPoll); err != nil {
			return "", false, &CancelledError{Err: err}
		}
	}
}

// scroll moves the list by rows and lines it up with the scroll flag.
func (s *scan) scroll(ctx context.Context, rows int) error {
	if err := ctx.Err(); err != nil {
		return &CancelledError{Err: err}
	}
	s.setState(StateNavigating)
	grid := s.layout.Grid()
	if err := s.deps.Controller.Scroll(ctx, rows*grid.ScrollTicksPerRow); err != nil {
		return err
	}
	s.invalidate()
	if err := s.deps.Clock.Sleep(ctx, s.opts.ScrollDelay); err != nil {
		return &CancelledError{Err: err}
	}
	if s.flag == nil {
		return nil
	}

	p, _ := s.layout.Sample(layout.SampleScrollFlag)
	for tick := 0; ; tick++ {
		c, err := screenshot.Color(ctx, s.deps.Capturer, p)
		if err != nil {
			if cat, _ := Classify(err); cat == CategoryCancelled {
				return err
			}
			logutil.Warn(logutil.Fields{"error": err}, "scan: scroll flag unreadable")
			return nil
		}
		if artifact.ColorDistance(c, *s.flag) <= flagTolerance {
			return nil
		}
		if tick == maxAlignTicks {
			logutil.Warn(logutil.Fields{"ticks": tick}, "scan: scroll flag not aligned")
			return nil
		}
		if err := s.deps.Controller.Scroll(ctx, 1); err != nil {
			return err
		}
		s.invalidate()
		if err := s.deps.Clock.Sleep(ctx, s.opts.ScrollDelay); err != nil {
			return &CancelledError{Err: err}
		}
	}
}

// invalidate drops a snapshot taken before the last input event.
func (s *scan) invalidate() {
	if inv, ok := s.deps.Capturer.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// isSentinel reports an item with nothing readable on it, which the game
// shows past the last item.
func isSentinel(rd artifact.Readings) bool {
	for _, r := range []artifact.Reading{rd.Title, rd.MainName, rd.MainValue, rd.Level, rd.Rarity, rd.Equip} {
		if !r.Empty() {
			return false
		}
	}
	for _, r := range rd.Subs {
		if !r.Empty() {
			return false
		}
	}
	return true
}

// confident reports whether every required reading cleared the threshold.
func (s *scan) confident(rd artifact.Readings) bool {
	for _, r := range []artifact.Reading{rd.Title, rd.MainName, rd.MainValue, rd.Rarity} {
		if r.Confidence < s.opts.Threshold {
			return false
		}
	}
	return true
}

func (s *scan) accept(rec artifact.Artifact, attempts int, started time.Time, delay time.Duration) error {
	if reason := s.filter(rec); reason != "" {
		s.report.Filtered++
		s.report.Processed++
		s.publish()
		s.emit(messages.ItemFiltered{SessionID: s.report.SessionID, Item: s.item, Reason: reason})
		return nil
	}

	if s.prev != nil && rec.SameItem(*s.prev) {
		s.dups++
		if !s.opts.IgnoreDuplicates && s.dups >= s.opts.DuplicateLimit {
			return &NavigationStuckError{Attempts: s.dups, Reference: rec.String()}
		}
	} else {
		s.dups = 0
	}

	now := s.deps.Clock.Now()
	rec.ID = ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
	s.report.Records = append(s.report.Records, rec)
	s.report.Accepted++
	s.report.Processed++
	s.prev = &rec
	elapsed := now.Sub(started)
	s.timings = append(s.timings, elapsed)

	s.setState(StateAccepted)
	s.publish()
	s.emit(messages.ItemAccepted{
		SessionID: s.report.SessionID,
		Item:      s.item,
		RecordID:  rec.ID,
		Summary:   rec.String(),
		Attempts:  attempts,
		Elapsed:   elapsed,
		Delay:     delay,
	})
	return nil
}

func (s *scan) filter(rec artifact.Artifact) string {
	if rec.Rarity < s.opts.MinRarity {
		return fmt.Sprintf("rarity %d below %d", rec.Rarity, s.opts.MinRarity)
	}
	if s.opts.MinLevel > 0 && !rec.IsUnknown(artifact.FieldLevel) && rec.Level < s.opts.MinLevel {
		return fmt.Sprintf("level %d below %d", rec.Level, s.opts.MinLevel)
	}
	return ""
}

func (s *scan) count(cat Category, attempt int, err error) {
	s.report.Stats.Add(cat)
	s.emit(messages.ErrorCounted{SessionID: s.report.SessionID, Item: s.item, Category: string(cat), Attempt: attempt, Err: err})
}

func (s *scan) skip(cat Category, err error) {
	s.report.Skipped++
	s.report.Processed++
	s.report.SkippedBy[cat]++
	s.setState(StateSkipped)
	s.publish()
	s.emit(messages.ItemSkipped{SessionID: s.report.SessionID, Item: s.item, Category: string(cat), Err: err})
}

func (s *scan) finish(err error) Report {
	r := s.report
	r.Finished = s.deps.Clock.Now()
	r.Timing = summarize(s.timings)
	r.Outcome = OutcomeCompleted
	final := StateCompleted
	if err != nil {
		r.Outcome = OutcomeAborted
		final = StateAborted
		switch cat, _ := Classify(err); cat {
		case CategoryCancelled:
			r.Cancelled = true
			var ce *CancelledError
			if !errors.As(err, &ce) {
				err = &CancelledError{Err: err}
			}
		case CategoryNavigationStuck, CategoryControlLost:
			r.Stats.Add(cat)
		}
		r.Err = err
	}
	s.report = r
	s.setState(final)
	s.publish()
	s.emit(messages.ScanFinished{
		SessionID: r.SessionID,
		Outcome:   string(r.Outcome),
		Accepted:  r.Accepted,
		Skipped:   r.Skipped,
		Filtered:  r.Filtered,
		Elapsed:   r.Elapsed(),
		Err:       r.Err,
	})
	return r
}

func (s *scan) setState(to State) {
	if to == s.state {
		return
	}
	from := s.state
	s.state = to
	s.publish()
	s.emit(messages.StateChanged{SessionID: s.report.SessionID, Item: s.item, From: string(from), To: string(to)})
}

func (s *scan) emit(e messages.Event) { s.deps.Observer.OnEvent(e) }

func (s *scan) publish() {
	s.m.mu.Lock()
	s.m.progress = Progress{
		SessionID: s.report.SessionID,
		State:     s.state,
		Total:     s.report.Total,
		Processed: s.report.Processed,
		Accepted:  s.report.Accepted,
		Skipped:   s.report.Skipped,
		Filtered:  s.report.Filtered,
	}
	s.m.mu.Unlock()
}

package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/control"
	"artifact-scanner/src/geometry"
	"artifact-scanner/src/layout"
	"artifact-scanner/src/messages"
	"artifact-scanner/src/ocr"
	"artifact-scanner/src/screenshot"
)

var (
	flagPoint   = geometry.Pt(50, 50)
	flagColor   = color.RGBA{200, 100, 50, 255}
	offFlag     = color.RGBA{20, 20, 20, 255}
	regionGreen = uint8(200)
	regionBlue  = uint8(7)
)

// testLayout stacks the given item regions in a column and adds the two
// auxiliary regions. Grid is 2x2 with 3 ticks per row.
func testLayout(t *testing.T, ids ...string) layout.Layout {
	t.Helper()
	var regions []layout.Region
	for i, id := range ids {
		regions = append(regions, layout.Region{ID: id, Rect: geometry.R(1400, 100+i*40, 200, 30)})
	}
	aux := []layout.Region{
		{ID: layout.ItemCounter, Rect: geometry.R(1400, 800, 200, 30)},
		{ID: layout.InventoryCount, Rect: geometry.R(1400, 900, 200, 30)},
	}
	grid := layout.Grid{
		Origin:            geometry.Pt(100, 100),
		Cell:              geometry.Sz(100, 100),
		Gap:               geometry.Sz(10, 10),
		Rows:              2,
		Cols:              2,
		ScrollTicksPerRow: 3,
	}
	samples := map[string]geometry.Point{layout.SampleScrollFlag: flagPoint}
	l, err := layout.New("test", geometry.Sz(1920, 1080), regions, aux, grid, samples)
	if err != nil {
		t.Fatalf("layout.New: %v", err)
	}
	return l
}

func fullLayout(t *testing.T) layout.Layout {
	return testLayout(t, layout.Dispatch...)
}

// world simulates the inventory. A click on another cell, or the first click
// after a scroll, shows the next item until the item index reaches frozenAt.
type world struct {
	mu sync.Mutex

	lay      layout.Layout
	ids      []string
	still    *screenshot.Still
	total    int
	current  int
	frozenAt int

	clicks   []geometry.Point
	scrolled bool
	ticks    int
	misalign int
	// misalignOnScroll is how many single ticks alignment needs after a
	// page scroll.
	misalignOnScroll int

	read  func(item int, id string) ocr.Result
	calls map[string]int
	delay func(id string) time.Duration

	// counter overrides the item counter text.
	counter func(item int) string
	// clickErr fails the n-th click, counting from 1.
	clickErr func(n int) error
	// captureErr fails captures of the item's own regions.
	captureErr func(item int) error
}

func newWorld(t *testing.T, lay layout.Layout, total int, read func(item int, id string) ocr.Result) *world {
	t.Helper()
	w := &world{lay: lay, total: total, read: read, calls: map[string]int{}}

	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	paint := func(id string, r geometry.Rect) {
		c := color.RGBA{uint8(len(w.ids) + 1), regionGreen, regionBlue, 255}
		w.ids = append(w.ids, id)
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	for _, r := range lay.Regions() {
		paint(r.ID, r.Rect)
	}
	for _, id := range []string{layout.ItemCounter, layout.InventoryCount} {
		r, _ := lay.Lookup(id)
		paint(id, r.Rect)
	}
	img.SetRGBA(flagPoint.X, flagPoint.Y, flagColor)
	w.still = screenshot.NewStill(img, geometry.Pt(0, 0))
	return w
}

func (w *world) Bounds() geometry.Rect { return w.still.Bounds() }

func (w *world) Capture(ctx context.Context, rect geometry.Rect) (*screenshot.Frame, error) {
	w.mu.Lock()
	misaligned := w.misalign > 0
	item := w.current
	w.mu.Unlock()
	if w.captureErr != nil && rect.Width > 1 && !w.auxiliary(rect) {
		if err := w.captureErr(item); err != nil {
			return nil, err
		}
	}
	if rect == geometry.R(flagPoint.X, flagPoint.Y, 1, 1) && misaligned {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, offFlag)
		return &screenshot.Frame{Rect: rect, Image: img, At: time.Now()}, nil
	}
	return w.still.Capture(ctx, rect)
}

func (w *world) auxiliary(rect geometry.Rect) bool {
	for _, id := range []string{layout.ItemCounter, layout.InventoryCount} {
		if r, ok := w.lay.Lookup(id); ok && r.Rect == rect {
			return true
		}
	}
	return false
}

func (w *world) MoveAndClick(ctx context.Context, p geometry.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.clickErr != nil {
		if err := w.clickErr(len(w.clicks) + 1); err != nil {
			return err
		}
	}
	moved := w.scrolled || len(w.clicks) == 0 || w.clicks[len(w.clicks)-1] != p
	w.clicks = append(w.clicks, p)
	w.scrolled = false
	if moved && (w.frozenAt == 0 || w.current < w.frozenAt) {
		w.current++
	}
	return nil
}

func (w *world) Scroll(ctx context.Context, ticks int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ticks += ticks
	w.scrolled = true
	if ticks == 1 && w.misalign > 0 {
		w.misalign--
	} else if ticks > 1 {
		w.misalign = w.misalignOnScroll
	}
	return nil
}

func (w *world) WindowRect(ctx context.Context) (geometry.Rect, error) {
	return geometry.R(0, 0, 1920, 1080), nil
}

func (w *world) Activate(ctx context.Context) error { return nil }

func (w *world) Recognize(ctx context.Context, img image.Image) (ocr.Result, error) {
	b := img.Bounds()
	c := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)
	if c.G != regionGreen || c.B != regionBlue || int(c.R) < 1 || int(c.R) > len(w.ids) {
		return ocr.Result{}, &ocr.RecognitionError{Op: "fake", Err: ocr.ErrUnsupportedFormat}
	}
	id := w.ids[c.R-1]
	if w.delay != nil {
		time.Sleep(w.delay(id))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch id {
	case layout.ItemCounter:
		if w.counter != nil {
			return ocr.Result{Text: w.counter(w.current), Confidence: 0.95}, nil
		}
		return ocr.Result{Text: fmt.Sprintf("%d", w.current), Confidence: 0.95}, nil
	case layout.InventoryCount:
		return ocr.Result{Text: fmt.Sprintf("圣遗物%d/2100", w.total), Confidence: 0.95}, nil
	}
	w.calls[fmt.Sprintf("%d/%s", w.current, id)]++
	return w.read(w.current, id), nil
}

func (w *world) clickCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clicks)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []messages.Event
}

func (r *recorder) OnEvent(e messages.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

// goodItem reads as a five-star Gladiator flower at level item.
func goodItem(item int, id string) ocr.Result {
	text := map[string]string{
		layout.ItemName:      "角斗士的留恋",
		layout.MainStatName:  "生命值",
		layout.MainStatValue: "4,780",
		layout.Level:         fmt.Sprintf("+%d", item),
		layout.Rarity:        "5",
		layout.SubStat1:      "暴击率+3.9%",
		layout.SubStat2:      "暴击伤害+7.8%",
		layout.SubStat3:      "攻击力+5.8%",
	}[id]
	if text == "" {
		return ocr.Result{}
	}
	return ocr.Result{Text: text, Confidence: 0.95}
}

func defaultOptions(lay layout.Layout) Options {
	return Options{
		Layout:           lay,
		Threshold:        0.7,
		MaxRetries:       2,
		StallLimit:       5,
		BaseDelay:        60 * time.Millisecond,
		ScrollDelay:      50 * time.Millisecond,
		SwitchTimeout:    100 * time.Millisecond,
		CaptureTimeout:   time.Second,
		RecognizeTimeout: time.Second,
		Workers:          4,
	}
}

func newMachine(t *testing.T, w *world, opts Options, obs Observer) *Machine {
	t.Helper()
	m, err := New(Deps{
		Capturer:   w,
		Controller: w,
		Recognizer: w,
		Observer:   obs,
		Clock:      &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestAcceptsEveryReadableItem(t *testing.T) {
	lay := testLayout(t, layout.ItemName, layout.MainStatName, layout.MainStatValue, layout.Level, layout.Rarity)
	w := newWorld(t, lay, 3, goodItem)
	rec := &recorder{}
	m := newMachine(t, w, defaultOptions(lay), rec)

	r := m.Run(context.Background())

	if r.Outcome != OutcomeCompleted || r.Err != nil {
		t.Fatalf("outcome = %s, err = %v", r.Outcome, r.Err)
	}
	if len(r.Records) != 3 || r.Accepted != 3 || r.Processed != 3 {
		t.Fatalf("records=%d accepted=%d processed=%d, want 3", len(r.Records), r.Accepted, r.Processed)
	}
	if got := rec.count(messages.TypeItemAccepted); got != 3 {
		t.Errorf("ItemAccepted events = %d, want 3", got)
	}
	if r.Stats.Total() != 0 {
		t.Errorf("stats = %v, want none", r.Stats)
	}
	for i, a := range r.Records {
		if a.Level != i+1 {
			t.Errorf("record %d level = %d, want %d", i, a.Level, i+1)
		}
		if a.ID == "" {
			t.Errorf("record %d has no id", i)
		}
		if a.Set != "GladiatorsFinale" || a.Slot != artifact.Flower || a.Main.Key != artifact.HP {
			t.Errorf("record %d = %v", i, a)
		}
	}
	if w.clickCount() != 3 {
		t.Errorf("clicks = %d, want 3", w.clickCount())
	}
	if p := m.Progress(); p.State != StateCompleted || p.Accepted != 3 {
		t.Errorf("progress = %+v", p)
	}
}

func TestLowConfidenceRetriesThenSkips(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 2, func(item int, id string) ocr.Result {
		r := goodItem(item, id)
		if item == 1 && id == layout.MainStatValue {
			r.Confidence = 0.40
		}
		return r
	})
	m := newMachine(t, w, defaultOptions(lay), nil)

	r := m.Run(context.Background())

	if r.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, err = %v", r.Outcome, r.Err)
	}
	if got := r.Stats[CategoryLowConfidence]; got != 2 {
		t.Errorf("low-confidence count = %d, want 2", got)
	}
	if r.Skipped != 1 || r.SkippedBy[CategoryLowConfidence] != 1 {
		t.Errorf("skipped = %d by %v", r.Skipped, r.SkippedBy)
	}
	if r.Accepted != 1 || len(r.Records) != 1 || r.Records[0].Level != 2 {
		t.Errorf("accepted = %d records = %v", r.Accepted, r.Records)
	}
	if got := w.calls["1/"+layout.MainStatValue]; got != 2 {
		t.Errorf("main-stat-value read %d times for item 1, want 2", got)
	}
}

func TestFrozenWindowAborts(t *testing.T) {
	tests := []struct {
		name         string
		ignore       bool
		wantAttempts int
		wantRecords  int
		wantClicks   int
	}{
		// Item 3 repeats item 2 and is kept; item 4 reaches the duplicate limit.
		{name: "duplicate guard", wantAttempts: 2, wantRecords: 3, wantClicks: 6},
		// Four cells in a row, a full page, never change the reference.
		{name: "duplicates ignored", ignore: true, wantAttempts: 4, wantRecords: 5, wantClicks: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lay := fullLayout(t)
			w := newWorld(t, lay, 10, goodItem)
			w.frozenAt = 2
			opts := defaultOptions(lay)
			opts.IgnoreDuplicates = tt.ignore

			r := newMachine(t, w, opts, nil).Run(context.Background())

			if r.Outcome != OutcomeAborted || r.Cancelled {
				t.Fatalf("outcome = %s cancelled = %v", r.Outcome, r.Cancelled)
			}
			var stuck *NavigationStuckError
			if !errors.As(r.Err, &stuck) {
				t.Fatalf("err = %v, want NavigationStuckError", r.Err)
			}
			if stuck.Attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", stuck.Attempts, tt.wantAttempts)
			}
			if len(r.Records) != tt.wantRecords {
				t.Errorf("records = %d, want %d", len(r.Records), tt.wantRecords)
			}
			if r.Stats[CategoryNavigationStuck] != 1 {
				t.Errorf("stats = %v", r.Stats)
			}
			if got := w.clickCount(); got != tt.wantClicks {
				t.Errorf("clicks = %d, want %d", got, tt.wantClicks)
			}
		})
	}
}

func TestIdenticalNeighboursAreScanned(t *testing.T) {
	// Items 1 and 2 are the same artifact, so the counter region reads the
	// same for both.
	read := func(item int, id string) ocr.Result {
		if item == 2 {
			item = 1
		}
		return goodItem(item, id)
	}
	counter := func(item int) string {
		if item == 2 {
			item = 1
		}
		return fmt.Sprintf("%d", item)
	}
	for _, ignore := range []bool{false, true} {
		t.Run(fmt.Sprintf("ignore=%v", ignore), func(t *testing.T) {
			lay := fullLayout(t)
			w := newWorld(t, lay, 3, read)
			w.counter = counter
			opts := defaultOptions(lay)
			opts.IgnoreDuplicates = ignore

			r := newMachine(t, w, opts, nil).Run(context.Background())

			if r.Outcome != OutcomeCompleted || r.Err != nil {
				t.Fatalf("outcome = %s err = %v", r.Outcome, r.Err)
			}
			if r.Accepted != 3 || r.Skipped != 0 {
				t.Errorf("accepted = %d skipped = %d, want 3 and 0", r.Accepted, r.Skipped)
			}
			if r.Records[0].Level != 1 || r.Records[1].Level != 1 || r.Records[2].Level != 3 {
				t.Errorf("levels = %d %d %d", r.Records[0].Level, r.Records[1].Level, r.Records[2].Level)
			}
			// The second item gets one confirming click.
			if got := w.clickCount(); got != 4 {
				t.Errorf("clicks = %d, want 4", got)
			}
			if r.Stats[CategoryNavigationStuck] != 0 {
				t.Errorf("stats = %v", r.Stats)
			}
		})
	}
}

func TestWindowLostMidScan(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 4, goodItem)
	w.clickErr = func(n int) error {
		if n >= 3 {
			return &control.ControlError{Op: "click", Err: control.ErrWindowLost}
		}
		return nil
	}
	rec := &recorder{}

	r := newMachine(t, w, defaultOptions(lay), rec).Run(context.Background())

	if r.Outcome != OutcomeAborted || r.Cancelled {
		t.Fatalf("outcome = %s cancelled = %v", r.Outcome, r.Cancelled)
	}
	if !errors.Is(r.Err, control.ErrWindowLost) {
		t.Errorf("err = %v, want ErrWindowLost", r.Err)
	}
	if len(r.Records) != 2 || r.Accepted != 2 {
		t.Errorf("records = %d accepted = %d, want 2", len(r.Records), r.Accepted)
	}
	if r.Stats[CategoryControlLost] != 1 || r.Stats.Total() != 1 {
		t.Errorf("stats = %v, want control-lost once", r.Stats)
	}
	if got := w.clickCount(); got != 2 {
		t.Errorf("clicks = %d, want 2", got)
	}
	if got := rec.count(messages.TypeScanFinished); got != 1 {
		t.Errorf("ScanFinished events = %d, want 1", got)
	}
}

func TestCaptureTimeoutRetriesThenSkips(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 2, goodItem)
	w.captureErr = func(item int) error {
		if item == 1 {
			return context.DeadlineExceeded
		}
		return nil
	}

	r := newMachine(t, w, defaultOptions(lay), nil).Run(context.Background())

	if r.Outcome != OutcomeCompleted || r.Err != nil {
		t.Fatalf("outcome = %s err = %v", r.Outcome, r.Err)
	}
	if got := r.Stats[CategoryCaptureTimeout]; got != 2 {
		t.Errorf("capture-timeout count = %d, want 2", got)
	}
	if r.Skipped != 1 || r.SkippedBy[CategoryCaptureTimeout] != 1 {
		t.Errorf("skipped = %d by %v", r.Skipped, r.SkippedBy)
	}
	if r.Accepted != 1 || r.Records[0].Level != 2 {
		t.Errorf("accepted = %d records = %v", r.Accepted, r.Records)
	}
	if got := w.calls["1/"+layout.ItemName]; got != 0 {
		t.Errorf("item 1 recognized %d times after failed captures", got)
	}
}

func TestOutOfRangeRaritySkipsWithoutRetry(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 2, func(item int, id string) ocr.Result {
		if item == 1 && id == layout.Rarity {
			return ocr.Result{Text: "6", Confidence: 0.95}
		}
		return goodItem(item, id)
	})
	m := newMachine(t, w, defaultOptions(lay), nil)

	r := m.Run(context.Background())

	if r.Skipped != 1 || r.SkippedBy[CategoryValidationFailed] != 1 {
		t.Fatalf("skipped = %d by %v", r.Skipped, r.SkippedBy)
	}
	if r.Stats[CategoryValidationFailed] != 1 {
		t.Errorf("stats = %v", r.Stats)
	}
	if got := w.calls["1/"+layout.Rarity]; got != 1 {
		t.Errorf("rarity read %d times, want 1", got)
	}
	if r.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", r.Accepted)
	}
}

func TestCancelKeepsRecordsAndStopsNavigating(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 10, goodItem)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	accepted := 0
	obs := ObserverFunc(func(e messages.Event) {
		if e.Type() == messages.TypeItemAccepted {
			accepted++
			if accepted == 2 {
				cancel()
			}
		}
	})
	m := newMachine(t, w, defaultOptions(lay), obs)

	r := m.Run(ctx)

	if !r.Cancelled || r.Outcome != OutcomeAborted {
		t.Fatalf("cancelled = %v outcome = %s", r.Cancelled, r.Outcome)
	}
	var ce *CancelledError
	if !errors.As(r.Err, &ce) {
		t.Errorf("err = %v, want CancelledError", r.Err)
	}
	if len(r.Records) != 2 {
		t.Errorf("records = %d, want 2", len(r.Records))
	}
	if got := w.clickCount(); got != 2 {
		t.Errorf("clicks = %d, want no navigation after cancel", got)
	}
	if r.Stats[CategoryCancelled] != 0 {
		t.Errorf("cancellation counted as an error: %v", r.Stats)
	}
}

func TestCancelledBeforeStart(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 3, goodItem)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newMachine(t, w, defaultOptions(lay), nil).Run(ctx)

	if !r.Cancelled || len(r.Records) != 0 || w.clickCount() != 0 {
		t.Errorf("cancelled = %v records = %d clicks = %d", r.Cancelled, len(r.Records), w.clickCount())
	}
}

func TestJoinOrderIgnoresCompletionOrder(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 1, goodItem)
	order := map[string]int{}
	for i, id := range layout.Dispatch {
		order[id] = i
	}
	// Regions late in the layout finish first.
	w.delay = func(id string) time.Duration {
		if i, ok := order[id]; ok {
			return time.Duration(len(layout.Dispatch)-i) * time.Millisecond
		}
		return 0
	}
	opts := defaultOptions(lay)
	opts.Workers = len(layout.Dispatch)

	r := newMachine(t, w, opts, nil).Run(context.Background())

	if len(r.Records) != 1 {
		t.Fatalf("records = %d, err = %v", len(r.Records), r.Err)
	}
	want := []artifact.StatKey{artifact.CritRate, artifact.CritDMG, artifact.ATKPercent}
	got := r.Records[0].Subs
	if len(got) != len(want) {
		t.Fatalf("subs = %v", got)
	}
	for i := range want {
		if got[i].Key != want[i] {
			t.Errorf("sub %d = %s, want %s", i, got[i].Key, want[i])
		}
	}
}

func TestEmptyItemEndsScan(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 4, func(item int, id string) ocr.Result {
		if item > 2 {
			return ocr.Result{}
		}
		return goodItem(item, id)
	})

	r := newMachine(t, w, defaultOptions(lay), nil).Run(context.Background())

	if r.Outcome != OutcomeCompleted || r.Err != nil {
		t.Fatalf("outcome = %s err = %v", r.Outcome, r.Err)
	}
	if r.Accepted != 2 || r.Skipped != 0 {
		t.Errorf("accepted = %d skipped = %d", r.Accepted, r.Skipped)
	}
	if got := w.clickCount(); got != 3 {
		t.Errorf("clicks = %d, want 3", got)
	}
}

func TestScrollsLastPageAndAligns(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 5, goodItem)
	w.misalignOnScroll = 2

	r := newMachine(t, w, defaultOptions(lay), nil).Run(context.Background())

	if r.Accepted != 5 {
		t.Fatalf("accepted = %d err = %v", r.Accepted, r.Err)
	}
	// One remaining row: 3 ticks for the row plus 2 to line up the flag.
	if w.ticks != 5 {
		t.Errorf("ticks = %d, want 5", w.ticks)
	}
	grid := lay.Grid()
	if last := w.clicks[len(w.clicks)-1]; last != grid.CellCenter(1, 0) {
		t.Errorf("last click = %v, want %v", last, grid.CellCenter(1, 0))
	}
}

func TestMaxItemsCapsHeaderCount(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 3000, goodItem)
	opts := defaultOptions(lay)
	opts.MaxItems = 3

	r := newMachine(t, w, opts, nil).Run(context.Background())

	if r.Total != 3 || r.Accepted != 3 {
		t.Errorf("total = %d accepted = %d, want 3", r.Total, r.Accepted)
	}
}

func TestFilters(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 3, func(item int, id string) ocr.Result {
		if item == 2 && id == layout.Rarity {
			return ocr.Result{Text: "4", Confidence: 0.95}
		}
		return goodItem(item, id)
	})
	opts := defaultOptions(lay)
	opts.MinRarity = 5
	opts.MinLevel = 2
	rec := &recorder{}

	r := newMachine(t, w, opts, rec).Run(context.Background())

	// Item 1 is below the level filter and item 2 below the rarity filter.
	if r.Filtered != 2 || r.Accepted != 1 || r.Processed != 3 {
		t.Errorf("filtered = %d accepted = %d processed = %d", r.Filtered, r.Accepted, r.Processed)
	}
	if r.Skipped != 0 {
		t.Errorf("filtered items counted as skipped")
	}
	if got := rec.count(messages.TypeItemFiltered); got != 2 {
		t.Errorf("ItemFiltered events = %d", got)
	}
}

func TestDuplicateGuard(t *testing.T) {
	same := func(item int, id string) ocr.Result { return goodItem(1, id) }

	t.Run("aborts", func(t *testing.T) {
		lay := fullLayout(t)
		w := newWorld(t, lay, 5, same)
		opts := defaultOptions(lay)
		opts.DuplicateLimit = 2

		r := newMachine(t, w, opts, nil).Run(context.Background())

		var stuck *NavigationStuckError
		if !errors.As(r.Err, &stuck) {
			t.Fatalf("err = %v, want NavigationStuckError", r.Err)
		}
		if len(r.Records) != 2 {
			t.Errorf("records = %d, want 2", len(r.Records))
		}
	})

	t.Run("ignored", func(t *testing.T) {
		lay := fullLayout(t)
		w := newWorld(t, lay, 5, same)
		opts := defaultOptions(lay)
		opts.DuplicateLimit = 2
		opts.IgnoreDuplicates = true

		r := newMachine(t, w, opts, nil).Run(context.Background())

		if r.Err != nil || r.Accepted != 5 {
			t.Errorf("err = %v accepted = %d", r.Err, r.Accepted)
		}
	})
}

func TestDelayGrowsOnRetries(t *testing.T) {
	lay := fullLayout(t)
	w := newWorld(t, lay, 2, func(item int, id string) ocr.Result {
		r := goodItem(item, id)
		if item == 1 && id == layout.ItemName && r.Confidence > 0 {
			r.Confidence = 0.5
		}
		return r
	})
	opts := defaultOptions(lay)
	opts.MaxRetries = 3
	var delays []time.Duration
	obs := ObserverFunc(func(e messages.Event) {
		if a, ok := e.(messages.ItemAccepted); ok {
			delays = append(delays, a.Delay)
		}
	})

	r := newMachine(t, w, opts, obs).Run(context.Background())

	if r.Stats[CategoryLowConfidence] != 3 || len(delays) != 1 {
		t.Fatalf("stats = %v accepted delays = %v", r.Stats, delays)
	}
	if delays[0] <= opts.BaseDelay {
		t.Errorf("delay after low-confidence item = %v, want above %v", delays[0], opts.BaseDelay)
	}
}

func TestNewRequiresCapabilities(t *testing.T) {
	if _, err := New(Deps{}, Options{}); err == nil {
		t.Error("New without capabilities succeeded")
	}
}

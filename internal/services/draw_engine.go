package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"luckydraw/internal/metrics"
	"luckydraw/internal/models"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// SlowdownSteps is the fixed length of the deceleration after Stop.
const SlowdownSteps = 10

// MaskedName replaces the winner's name while first-prize mode reveals it.
const MaskedName = "???"

const (
	defaultSpinTick              = 70 * time.Millisecond
	slowdownIncrement            = 10 * time.Millisecond
	defaultRevealDelay           = 800 * time.Millisecond
	defaultFirstPrizeRevealDelay = 300 * time.Millisecond
)

// PlaceholderPatterns are shown instead of the name while spinning in
// first-prize mode.
var PlaceholderPatterns = []string{"???", "■■■", "•••", "***", "▲▲▲", "◆◆◆"}

// Store is the persistence the engine reads and writes through.
type Store interface {
	Participants(ctx context.Context) ([]models.Participant, error)
	SaveParticipants(ctx context.Context, list []models.Participant) error
	Winners(ctx context.Context) ([]models.Winner, error)
	AddWinner(ctx context.Context, w models.Winner) ([]models.Winner, error)
	RemoveWinner(ctx context.Context, n int, pickedAt string) (bool, error)
	ClearWinners(ctx context.Context) error
	ResetAll(ctx context.Context) error
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
}

// Engine runs one draw at a time: Idle → Spinning → Slowing → Revealing → Idle.
//
// The engine never starts timers of its own. It records when it next wants
// to run (NextWake) and does the due work when Advance is called, so a single
// outside scheduler owns the only pending wake-up. Operations that are not
// valid in the current phase are silent no-ops.
type Engine struct {
	mu sync.Mutex

	store    Store
	rng      *rand.Rand
	now      func() time.Time
	listener func(Event)
	wake     func()

	spinTick              time.Duration
	revealDelay           time.Duration
	firstPrizeRevealDelay time.Duration

	phase       Phase
	drawID      string
	firstPrize  bool
	allowRepeat bool
	pool        []models.Participant
	current     *models.Participant
	placeholder string
	step        int
	delay       time.Duration
	wakeAt      time.Time

	eligible int
	total    int
}

// NewEngine creates an idle engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:                 store,
		rng:                   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:                   time.Now,
		spinTick:              defaultSpinTick,
		revealDelay:           defaultRevealDelay,
		firstPrizeRevealDelay: defaultFirstPrizeRevealDelay,
		phase:                 PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// setWakeHook registers fn to be told whenever NextWake may have changed.
func (e *Engine) setWakeHook(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wake = fn
}

// Start begins spinning over the current eligible pool. It does nothing
// unless the engine is idle and somebody is eligible.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		return nil
	}
	pool, err := e.refreshLocked(ctx)
	if err != nil {
		return err
	}
	if len(pool) == 0 {
		return nil
	}

	e.pool = pool
	e.drawID = uuid.NewString()
	e.phase = PhaseSpinning
	e.step = 0
	e.spinLocked()
	e.scheduleLocked(e.spinTick)

	metrics.RecordDrawStarted()
	logger.Infof("Draw %s started with %d eligible of %d participants", e.drawID, len(pool), e.total)
	e.emitLocked(Event{Type: EventState})
	return nil
}

// Stop ends the fast spin and performs the first slowdown step at once.
// It does nothing unless the engine is spinning with a candidate shown.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseSpinning || e.current == nil {
		return nil
	}
	e.phase = PhaseSlowing
	e.step = 0
	e.delay = e.spinTick
	e.emitLocked(Event{Type: EventState})
	return e.slowStepLocked(ctx)
}

// Reset abandons any draw in progress without committing a winner.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.emitLocked(Event{Type: EventState})
}

// Advance performs whatever is due at the current time. Calling it early,
// late or repeatedly is safe; nothing happens unless a wake-up is due.
func (e *Engine) Advance(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wakeAt.IsZero() || e.now().Before(e.wakeAt) {
		return nil
	}
	switch e.phase {
	case PhaseSpinning:
		e.spinLocked()
		e.scheduleLocked(e.spinTick)
		e.emitLocked(Event{Type: EventTick})
	case PhaseSlowing:
		return e.slowStepLocked(ctx)
	case PhaseRevealing:
		return e.commitLocked(ctx)
	default:
		e.wakeAt = time.Time{}
	}
	return nil
}

// NextWake reports when Advance next has work to do.
func (e *Engine) NextWake() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wakeAt, !e.wakeAt.IsZero()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Snapshot reloads pool counts from the store and returns the render state.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.refreshLocked(ctx); err != nil {
		return Snapshot{}, err
	}
	return e.snapshotLocked(), nil
}

// SetFirstPrizeMode toggles the suspense mode. Ignored unless idle.
func (e *Engine) SetFirstPrizeMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseIdle || e.firstPrize == on {
		return
	}
	e.firstPrize = on
	e.emitLocked(Event{Type: EventState})
}

// SetAllowRepeat persists the repeat-winner setting.
func (e *Engine) SetAllowRepeat(ctx context.Context, allow bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SaveSettings(ctx, models.Settings{AllowRepeatWinners: allow}); err != nil {
		return err
	}
	return e.changedLocked(ctx)
}

// ReplaceParticipants saves a new participant set. A draw in progress is
// abandoned since its pool came from the old set.
func (e *Engine) ReplaceParticipants(ctx context.Context, list []models.Participant) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	if err := e.store.SaveParticipants(ctx, list); err != nil {
		return err
	}
	return e.changedLocked(ctx)
}

// RemoveWinner deletes the record matching both n and pickedAt, making
// that participant eligible again. Removing a missing record is a no-op.
func (e *Engine) RemoveWinner(ctx context.Context, n int, pickedAt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed, err := e.store.RemoveWinner(ctx, n, pickedAt)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	logger.Infof("Removed winner N=%d picked at %s", n, pickedAt)
	return e.changedLocked(ctx)
}

// ClearWinners drops the whole winner history.
func (e *Engine) ClearWinners(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.ClearWinners(ctx); err != nil {
		return err
	}
	logger.Infof("Cleared winners")
	return e.changedLocked(ctx)
}

// ResetAll drops participants and winners together and abandons any draw.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	if err := e.store.ResetAll(ctx); err != nil {
		return err
	}
	logger.Infof("Cleared participants and winners")
	return e.changedLocked(ctx)
}

// spinLocked re-rolls the candidate and, in first-prize mode, the placeholder.
func (e *Engine) spinLocked() {
	e.rollLocked()
	if e.firstPrize {
		e.placeholder = PlaceholderPatterns[e.rng.IntN(len(PlaceholderPatterns))]
	}
}

func (e *Engine) rollLocked() {
	p := e.pool[e.rng.IntN(len(e.pool))]
	e.current = &p
}

func (e *Engine) slowStepLocked(ctx context.Context) error {
	e.step++
	if e.step >= SlowdownSteps {
		return e.resolveLocked(ctx)
	}
	e.rollLocked()
	e.delay += time.Duration(e.step) * slowdownIncrement
	e.scheduleLocked(e.delay)
	e.emitLocked(Event{Type: EventCountdown})
	return nil
}

// resolveLocked picks the winner on the last slowdown step. The winner list
// is reloaded so a record added elsewhere since Start is not picked twice;
// if nobody else is left the original pick stands.
func (e *Engine) resolveLocked(ctx context.Context) error {
	winners, err := e.store.Winners(ctx)
	if err != nil {
		return e.abortLocked(err)
	}
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return e.abortLocked(err)
	}

	pick := e.pool[e.rng.IntN(len(e.pool))]
	if !settings.AllowRepeatWinners && hasWinner(winners, pick.N) {
		left := ComputeEligible(e.pool, winners, settings)
		if len(left) > 0 {
			pick = left[e.rng.IntN(len(left))]
		} else {
			metrics.RecordDuplicateFallback()
			logger.Warningf("Draw %s: nobody left outside the winner list, accepting repeat winner N=%d", e.drawID, pick.N)
		}
	}

	e.current = &pick
	e.phase = PhaseRevealing
	if e.firstPrize {
		e.scheduleLocked(e.firstPrizeRevealDelay)
	} else {
		e.scheduleLocked(e.revealDelay)
	}
	e.emitLocked(Event{Type: EventState})
	return nil
}

func (e *Engine) commitLocked(ctx context.Context) error {
	w := models.NewWinner(*e.current, e.now())
	if _, err := e.store.AddWinner(ctx, w); err != nil {
		return e.abortLocked(err)
	}

	drawID := e.drawID
	e.phase = PhaseIdle
	e.wakeAt = time.Time{}
	e.pool = nil
	e.step = 0
	if _, err := e.refreshLocked(ctx); err != nil {
		logger.Warningf("Draw %s: refresh after commit: %v", drawID, err)
	}

	metrics.RecordDrawCompleted()
	logger.Infof("Draw %s: winner N=%d %s", drawID, w.N, w.Name)
	e.emitLocked(Event{Type: EventWinner, Winner: &w, Message: w.Name})
	return nil
}

// abortLocked returns to idle after a store failure mid-draw so the
// scheduler does not spin on a wake-up that can never succeed.
func (e *Engine) abortLocked(err error) error {
	logger.Errorf("Draw %s abandoned: %v", e.drawID, err)
	e.resetLocked()
	e.emitLocked(Event{Type: EventError, Message: err.Error()})
	return err
}

func (e *Engine) resetLocked() {
	if e.phase != PhaseIdle {
		metrics.RecordDrawReset()
		logger.Infof("Draw %s reset in phase %s", e.drawID, e.phase)
	}
	e.phase = PhaseIdle
	e.pool = nil
	e.current = nil
	e.placeholder = ""
	e.step = 0
	e.delay = 0
	e.drawID = ""
	e.wakeAt = time.Time{}
	e.kickLocked()
}

func (e *Engine) scheduleLocked(d time.Duration) {
	e.wakeAt = e.now().Add(d)
	e.kickLocked()
}

func (e *Engine) kickLocked() {
	if e.wake != nil {
		e.wake()
	}
}

// changedLocked refreshes counts after a store mutation and tells listeners.
func (e *Engine) changedLocked(ctx context.Context) error {
	if _, err := e.refreshLocked(ctx); err != nil {
		return err
	}
	e.emitLocked(Event{Type: EventState})
	return nil
}

// refreshLocked loads all three records and returns the eligible pool.
func (e *Engine) refreshLocked(ctx context.Context) ([]models.Participant, error) {
	participants, err := e.store.Participants(ctx)
	if err != nil {
		return nil, err
	}
	winners, err := e.store.Winners(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	pool := ComputeEligible(participants, winners, settings)
	e.eligible, e.total = len(pool), len(participants)
	e.allowRepeat = settings.AllowRepeatWinners
	metrics.UpdatePool(e.eligible, e.total)
	return pool, nil
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:              e.phase,
		DrawID:             e.drawID,
		FirstPrize:         e.firstPrize,
		Eligible:           e.eligible,
		Total:              e.total,
		AllowRepeatWinners: e.allowRepeat,
		CanStart:           e.phase == PhaseIdle && e.eligible > 0,
		CanStop:            e.phase == PhaseSpinning && e.current != nil,
	}
	switch e.phase {
	case PhaseSlowing:
		remaining := SlowdownSteps - e.step
		s.Countdown = &remaining
	case PhaseRevealing:
		zero := 0
		s.Countdown = &zero
	}
	if e.current == nil {
		return s
	}

	hidden := e.firstPrize && e.phase != PhaseIdle
	switch {
	case hidden && e.phase == PhaseRevealing:
		s.Display = MaskedName
	case hidden:
		s.Display = e.placeholder
	default:
		p := *e.current
		s.Candidate = &p
		s.Display = p.Name
	}
	return s
}

func (e *Engine) emitLocked(ev Event) {
	if e.listener == nil {
		return
	}
	ev.Snapshot = e.snapshotLocked()
	e.listener(ev)
}

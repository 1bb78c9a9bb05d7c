package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zencontrol/internal/events"
	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
	"zencontrol/internal/report"
)

// Bookings is the part of the booking repository the policy needs.
type Bookings interface {
	List() []models.Booking
	BulkRemoveBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// Marker persists the month of the last finalized archival decision.
type Marker interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, month string) error
}

// BackupWriter produces the monthly backup document. A nil result means
// there was nothing to back up.
type BackupWriter interface {
	MonthlyBackup(month time.Time, bookings []models.Booking) (*report.Result, error)
}

// Publisher announces the purge so the mirror can push.
type Publisher interface {
	PublishJSON(eventType string, payload any)
}

// Status is the observable archival state.
type Status struct {
	State        State  `json:"state"`
	Marker       string `json:"marker,omitempty"`
	CurrentMonth string `json:"current_month"`
}

// Outcome reports what a purge did.
type Outcome struct {
	State   State          `json:"state"`
	Removed int            `json:"removed"`
	Cutoff  string         `json:"cutoff,omitempty"`
	Month   string         `json:"month,omitempty"`
	Backup  *report.Result `json:"backup,omitempty"`
}

// Policy is the archival state machine. The caller awaits the startup pull
// before calling Check.
type Policy struct {
	fsm       *FSM
	bookings  Bookings
	marker    Marker
	backup    BackupWriter
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time

	mu     sync.Mutex
	state  State
	stored string
}

func NewPolicy(bookings Bookings, marker Marker, backup BackupWriter, publisher Publisher, logger zerolog.Logger) *Policy {
	return &Policy{
		fsm:       NewFSM(),
		bookings:  bookings,
		marker:    marker,
		backup:    backup,
		publisher: publisher,
		logger:    logger.With().Str("component", "lifecycle").Logger(),
		now:       time.Now,
		state:     StateNormal,
	}
}

// Status returns the current state with the stored and current months.
func (p *Policy) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{State: p.state, Marker: p.stored, CurrentMonth: models.MonthKey(p.now())}
}

// Check compares the stored marker with the current month. A missing marker is
// recorded as the current month and leaves the state NORMAL; a different month
// moves to CLEANUP_PROMPTED.
func (p *Policy) Check(ctx context.Context) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := models.MonthKey(p.now())
	stored, found, err := p.marker.Get(ctx)
	if err != nil {
		return p.state, err
	}

	if !found {
		if err := p.marker.Set(ctx, current); err != nil {
			return p.state, err
		}
		p.stored = current
		p.logger.Info().Str("month", current).Msg("Archival baseline recorded")
		return p.state, nil
	}

	p.stored = stored
	if stored == current || p.state != StateNormal {
		return p.state, nil
	}

	p.setState(StateCleanupPrompted)
	p.logger.Info().Str("marker", stored).Str("current", current).Msg("Month rollover detected, cleanup pending")
	return p.state, nil
}

// Decide answers the cleanup prompt. With generateReport the previous month is
// backed up and then purged; a backup failure aborts before anything is deleted.
// Without it a second confirmation is required.
func (p *Policy) Decide(ctx context.Context, generateReport bool) (*Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCleanupPrompted {
		return nil, fmt.Errorf("%w: decide from %s", ErrInvalidTransition, p.state)
	}

	if !generateReport {
		p.setState(StateCleanupConfirmPending)
		return &Outcome{State: p.state}, nil
	}

	previous := models.StartOfMonth(p.now()).AddDate(0, -1, 0)
	res, err := p.backup.MonthlyBackup(previous, p.bookings.List())
	if err != nil {
		p.logger.Error().Err(err).Msg("Monthly backup failed, nothing was deleted")
		return nil, fmt.Errorf("monthly backup: %w", err)
	}

	return p.purge(ctx, res)
}

// BackOut returns from the delete-without-backup confirmation to the prompt.
func (p *Policy) BackOut() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCleanupConfirmPending {
		return p.state, fmt.Errorf("%w: back out from %s", ErrInvalidTransition, p.state)
	}
	p.setState(StateCleanupPrompted)
	return p.state, nil
}

// ConfirmPurge deletes without a backup document.
func (p *Policy) ConfirmPurge(ctx context.Context) (*Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCleanupConfirmPending {
		return nil, fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, p.state)
	}
	p.logger.Warn().Msg("Purging without backup on explicit confirmation")
	return p.purge(ctx, nil)
}

// purge must be called with p.mu held.
func (p *Policy) purge(ctx context.Context, backup *report.Result) (*Outcome, error) {
	now := p.now()
	cutoff := models.StartOfMonth(now)
	current := models.MonthKey(now)

	removed, err := p.bookings.BulkRemoveBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge bookings: %w", err)
	}
	if err := p.marker.Set(ctx, current); err != nil {
		return nil, err
	}
	p.stored = current

	p.setState(StateCleanupApplied)
	metrics.AddArchivePurged(len(removed))
	p.publisher.PublishJSON(events.ArchivePurged, map[string]any{"removed": len(removed), "cutoff": cutoff.Format(models.DateLayout)})

	out := &Outcome{
		Removed: len(removed),
		Cutoff:  cutoff.Format(models.DateLayout),
		Month:   current,
		Backup:  backup,
	}
	ev := p.logger.Info().Int("removed", out.Removed).Str("cutoff", out.Cutoff)
	if backup != nil {
		ev = ev.Str("backup", backup.Path)
	}
	ev.Msg("Archival cleanup applied")

	p.setState(StateNormal)
	out.State = p.state
	return out, nil
}

func (p *Policy) setState(to State) {
	if !p.fsm.CanTransition(p.state, to) {
		p.logger.Error().Str("from", string(p.state)).Str("to", string(to)).Msg("Unexpected archival transition")
	}
	p.state = to
}

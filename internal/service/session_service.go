package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/model"
	"github.com/iliyamo/pickflick/internal/repository"
)

// DefaultMaxCodeAttempts caps the collision retry loop in Create.  With 36^6
// possible codes the cap is only reachable when the store is nearly full or
// the generator is broken.
const DefaultMaxCodeAttempts = 100

// notifyTimeout bounds how long a completed selection waits on the notifier.
const notifyTimeout = 5 * time.Second

// SelectionNotifier is told about every session that reached COMPLETED.
// Failures are logged and never undo the selection.
type SelectionNotifier interface {
	SessionCompleted(ctx context.Context, s *model.Session) error
}

// Selection is the result of SelectMovie: the winner plus the list exactly
// as it stood when the winner was drawn.
type Selection struct {
	SelectedMovie model.MovieEntry   `json:"selectedMovie"`
	AllMovies     []model.MovieEntry `json:"allMovies"`
}

// SessionService owns the session state machine.  Every check that guards a
// mutation runs inside the store's serialized Update, so concurrent clients
// can neither lose an add nor select from a list that misses one.
type SessionService struct {
	store       repository.SessionStore
	codes       CodeGenerator
	selector    SelectionEngine
	notifier    SelectionNotifier
	log         *zap.Logger
	now         func() time.Time
	maxAttempts int
}

// Option customises a SessionService.
type Option func(*SessionService)

func WithCodeGenerator(g CodeGenerator) Option { return func(s *SessionService) { s.codes = g } }
func WithSelector(e SelectionEngine) Option { return func(s *SessionService) { s.selector = e } }
func WithNotifier(n SelectionNotifier) Option { return func(s *SessionService) { s.notifier = n } }
func WithClock(now func() time.Time) Option { return func(s *SessionService) { s.now = now } }
func WithMaxCodeAttempts(n int) Option { return func(s *SessionService) { s.maxAttempts = n } }

// NewSessionService wires the service.  A nil logger disables logging.
func NewSessionService(store repository.SessionStore, log *zap.Logger, opts ...Option) *SessionService {
	if store == nil {
		panic("nil store passed to NewSessionService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &SessionService{
		store:       store,
		codes:       NewCodeGenerator(),
		selector:    NewUniformSelector(),
		log:         log,
		now:         time.Now,
		maxAttempts: DefaultMaxCodeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	return s
}

// NormalizeCode upper-cases and validates a user supplied code.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !ValidCode(c) {
		return "", ErrInvalidSessionCode
	}
	return c, nil
}

func (s *SessionService) storeErr(err error, code string) error {
	if errors.Is(err, repository.ErrSessionNotFound) {
		return withCode(ErrSessionNotFound, code)
	}
	return err
}

// Create allocates a fresh code and stores an empty active session under it.
// Collisions are retried silently.
func (s *SessionService) Create(ctx context.Context) (*model.Session, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		sess := model.NewSession(s.codes.Generate(), s.now())
		ok, err := s.store.InsertIfAbsent(ctx, sess)
		if err != nil {
			return nil, err
		}
		if ok {
			s.log.Info("session created", zap.String("code", sess.Code), zap.Int("attempts", attempt))
			return sess, nil
		}
		s.log.Debug("session code collision", zap.String("code", sess.Code))
	}
	s.log.Error("session code space exhausted", zap.Int("attempts", s.maxAttempts))
	return nil, ErrCodeSpaceExhausted
}

// Get returns the session stored under code.
func (s *SessionService) Get(ctx context.Context, code string) (*model.Session, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Find(ctx, c)
	if err != nil {
		return nil, s.storeErr(err, c)
	}
	return sess, nil
}

// AddMovie appends entry to an active session.  Field validation happens at
// the boundary; this only defends id presence, uniqueness and state.
func (s *SessionService) AddMovie(ctx context.Context, code string, entry model.MovieEntry) (*model.Session, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	if entry.ID.IsZero() {
		return nil, ErrInvalidMovie
	}
	entry = entry.Clone()
	sess, err := s.store.Update(ctx, c, func(cur *model.Session) error {
		if !cur.IsActive {
			return ErrSessionInactive
		}
		if cur.IndexOf(entry.ID) >= 0 {
			return ErrDuplicateMovie
		}
		cur.Movies = append(cur.Movies, entry)
		cur.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err, c)
	}
	return sess, nil
}

// RemoveMovie drops the entry with the given id.  An id that is not in the
// list is a no-op and returns the unchanged session.
func (s *SessionService) RemoveMovie(ctx context.Context, code string, id model.MovieID) (*model.Session, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Update(ctx, c, func(cur *model.Session) error {
		if !cur.IsActive {
			return ErrSessionInactive
		}
		i := cur.IndexOf(id)
		if i < 0 {
			return nil
		}
		cur.Movies = append(cur.Movies[:i], cur.Movies[i+1:]...)
		cur.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err, c)
	}
	return sess, nil
}

// SelectMovie draws the winner and completes the session.  It succeeds at
// most once per session; later calls fail with ErrSessionInactive.
func (s *SessionService) SelectMovie(ctx context.Context, code string) (*Selection, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Update(ctx, c, func(cur *model.Session) error {
		if !cur.IsActive {
			return ErrSessionInactive
		}
		if len(cur.Movies) == 0 {
			return ErrNoMoviesAvailable
		}
		chosen, err := s.selector.Choose(cur.Movies)
		if err != nil {
			return err
		}
		cur.SelectedMovie = &chosen
		cur.IsActive = false
		cur.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err, c)
	}
	s.log.Info("movie selected",
		zap.String("code", c),
		zap.String("movie_id", sess.SelectedMovie.ID.String()),
		zap.Int("candidates", len(sess.Movies)))
	s.notify(ctx, sess)

	return &Selection{
		SelectedMovie: sess.SelectedMovie.Clone(),
		AllMovies:     sess.Clone().Movies,
	}, nil
}

func (s *SessionService) notify(ctx context.Context, sess *model.Session) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.SessionCompleted(nctx, sess); err != nil {
		s.log.Warn("selection notification failed", zap.String("code", sess.Code), zap.Error(err))
	}
}

// Delete removes the session permanently.
func (s *SessionService) Delete(ctx context.Context, code string) error {
	c, err := NormalizeCode(code)
	if err != nil {
		return err
	}
	ok, err := s.store.Delete(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return withCode(ErrSessionNotFound, c)
	}
	s.log.Info("session deleted", zap.String("code", c))
	return nil
}

// Purge deletes sessions that have not changed for longer than olderThan.
func (s *SessionService) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, &Error{Kind: KindValidation, msg: "retention must be positive"}
	}
	cutoff := s.now().UTC().Add(-olderThan)
	n, err := s.store.Purge(ctx, cutoff)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.log.Info("sessions purged", zap.Int("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// RunJanitor purges sessions older than retention every interval until ctx
// is cancelled.
func (s *SessionService) RunJanitor(ctx context.Context, retention, interval time.Duration) {
	if retention <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Purge(ctx, retention); err != nil && ctx.Err() == nil {
				s.log.Warn("session purge failed", zap.Error(err))
			}
		}
	}
}

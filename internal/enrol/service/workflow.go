package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/eligibility"
	"github.com/aussiebroadwan/coursedesk/pkg/idx"
)

// DefaultAutoCloseDelay is how long a successful session stays visible
// before it closes itself.
const DefaultAutoCloseDelay = 1500 * time.Millisecond

const (
	msgClassLoadFailed = "Failed to load class information."
	msgUsersLoadFailed = "Failed to load the list of users."
	msgUserNotFound    = "User not found. Check the email address."
	msgSearchFailed    = "Failed to look up the user. Please try again."
	msgValidateFailed  = "Failed to validate the enrollment. Please try again."
	msgSubmitFailed    = "Failed to enroll the user. Please try again."
)

// EnrollmentWorkflow drives one enrollment session at a time: it loads the
// target class, locates a candidate user, and creates the enrollment after
// re-validating it against fresh data.
//
// All methods are safe for concurrent use. The lock is never held across a
// Directory Store call, so Close always returns promptly. Results of a call
// that was superseded by a newer search, selection or session are dropped.
//
// Callbacks run outside the lock and must be set before first use.
type EnrollmentWorkflow struct {
	Store          directory.Store
	Logger         *slog.Logger
	AutoCloseDelay time.Duration
	Now            func() time.Time

	// OnChange receives a copy of the state after every transition. It may
	// read State but must not call methods that change it.
	OnChange func(State)
	// OnClose runs whenever an open session ends.
	OnClose func()
	// OnSuccess runs once per created enrollment, right after OnClose.
	OnSuccess func(domain.Enrollment)

	mu         sync.Mutex
	st         State
	session    uint64
	candidate  uint64
	sessionCtx context.Context
	cancel     context.CancelFunc
	classReady chan struct{}
	timer      *time.Timer

	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64 // guarded by notifyMu
}

func NewEnrollmentWorkflow(store directory.Store, logger *slog.Logger) *EnrollmentWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentWorkflow{
		Store:          store,
		Logger:         logger,
		AutoCloseDelay: DefaultAutoCloseDelay,
		Now:            time.Now,
	}
}

// ticket pins a request to the session and candidate generation that were
// current when it started.
type ticket struct {
	session   uint64
	candidate uint64
	ctx       context.Context
	log       *slog.Logger
}

// State returns a copy of the current state.
func (w *EnrollmentWorkflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st.clone()
}

// ============================================================================
// Session lifecycle
// ============================================================================

// OpenFor starts a session for classID and loads, in order, the class, its
// occupancy and the candidate list. Opening the class that is already open
// returns immediately without fetching; opening another class replaces the
// current session.
func (w *EnrollmentWorkflow) OpenFor(ctx context.Context, classID string) error {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return precondition("class id is required")
	}

	w.mu.Lock()
	if w.st.ClassID == classID {
		w.mu.Unlock()
		return nil
	}
	w.endSessionLocked()
	w.sessionCtx, w.cancel = context.WithCancel(context.Background())
	ready := make(chan struct{})
	w.classReady = ready
	w.st = State{
		SessionID: idx.New(idx.KindSession),
		ClassID:   classID,
		Phase:     PhaseIdle,
		ClassInfo: ClassInfoLoading,
	}
	t := w.ticketLocked()
	w.commitUnlock()

	opCtx, done := bind(ctx, t.ctx)
	defer done()

	t.log.DebugContext(ctx, "enrollment session opened")

	class, occupancy, err := w.loadClass(opCtx, classID)
	if err != nil {
		ok := w.applySession(t, func(s *State) {
			s.ClassInfo = ClassInfoFailed
			s.Error = displayMessage(err, msgClassLoadFailed)
		})
		close(ready)
		if !ok {
			return ErrSuperseded
		}
		t.log.WarnContext(ctx, "failed to load class", slog.Any("error", err))
		return storeErr("load class", err)
	}

	ok := w.applySession(t, func(s *State) {
		s.ClassInfo = ClassInfoReady
		s.Class = &class
		s.Occupancy = occupancy
		s.CandidatesLoading = true
	})
	close(ready)
	if !ok {
		return ErrSuperseded
	}

	candidates, err := w.loadCandidates(opCtx, class.CourseID)
	if err != nil {
		if !w.applySession(t, func(s *State) {
			s.CandidatesLoading = false
			if s.Error == "" {
				s.Error = displayMessage(err, msgUsersLoadFailed)
			}
		}) {
			return ErrSuperseded
		}
		t.log.WarnContext(ctx, "failed to load candidate users", slog.Any("error", err))
		return storeErr("load candidates", err)
	}

	if !w.applySession(t, func(s *State) {
		s.Candidates = candidates
		s.CandidatesLoading = false
	}) {
		return ErrSuperseded
	}
	t.log.DebugContext(ctx, "enrollment session loaded",
		slog.Int("occupancy", occupancy),
		slog.Int("candidates", len(candidates)),
	)
	return nil
}

// Close ends the session: in-flight calls are cancelled, a pending
// auto-close is stopped and OnClose runs. Closing an idle workflow does
// nothing.
func (w *EnrollmentWorkflow) Close() {
	w.mu.Lock()
	if !w.st.Open() {
		w.mu.Unlock()
		return
	}
	w.logger().Debug("enrollment session closed", slog.String("session_id", w.st.SessionID.String()))
	w.endSessionLocked()
	w.commitUnlock()

	if w.OnClose != nil {
		w.OnClose()
	}
}

// DismissError clears the visible message. A refused or failed submit
// returns to the found state so it can be retried.
func (w *EnrollmentWorkflow) DismissError() {
	w.mu.Lock()
	if w.st.Error == "" {
		w.mu.Unlock()
		return
	}
	w.st.Error = ""
	switch w.st.Phase {
	case PhaseSubmitFailed, PhaseSubmitBlocked:
		w.st.Reason = eligibility.ReasonNone
		if w.st.SelectedUserID != "" {
			w.st.Phase = PhaseUserFound
		}
	}
	w.commitUnlock()
}

// SetEnrollmentDate sets the optional back-dated enrollment date. Nil means
// the store stamps the current time.
func (w *EnrollmentWorkflow) SetEnrollmentDate(date *time.Time) error {
	w.mu.Lock()
	if err := w.lookupAllowedLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.st.EnrollmentDate = clonePtr(date)
	w.commitUnlock()
	return nil
}

// ============================================================================
// Candidate lookup
// ============================================================================

// Search locates a user by exact email. A found user is selected unless
// they already hold an enrollment in the class's course. An empty email
// clears the current candidate.
func (w *EnrollmentWorkflow) Search(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	w.mu.Lock()
	if err := w.lookupAllowedLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.candidate++
	w.st.clearCandidate()
	w.st.SearchEmail = email
	if email == "" {
		w.st.Phase = PhaseIdle
		w.commitUnlock()
		return nil
	}
	w.st.Phase = PhaseSearchingUser
	t := w.ticketLocked()
	ready := w.classReady
	w.commitUnlock()

	opCtx, done := bind(ctx, t.ctx)
	defer done()

	user, err := w.Store.Users().FindUserByEmail(opCtx, email)
	if errors.Is(err, directory.ErrNotFound) {
		if !w.applyCandidate(t, func(s *State) {
			s.Phase = PhaseUserNotFound
			s.Error = msgUserNotFound
		}) {
			return ErrSuperseded
		}
		t.log.InfoContext(ctx, "no user with searched email")
		return fmt.Errorf("%w: no user with email %q", ErrNotFound, email)
	}
	if err != nil {
		return w.lookupFailed(ctx, t, "find user", err)
	}

	class, err := w.awaitClass(opCtx, t, ready)
	if err != nil {
		return w.lookupFailed(ctx, t, "await class", err)
	}
	if class == nil {
		// Class info failed to load; Submit re-validates everything.
		return w.acceptCandidate(t, user, -1)
	}

	enrollments, err := w.Store.Enrollments().ListByUser(opCtx, user.ID)
	if err != nil {
		return w.lookupFailed(ctx, t, "list user enrollments", err)
	}
	if eligibility.HasCourseEnrollment(enrollments, class.CourseID) {
		return w.refuseCandidate(ctx, t, user, eligibility.DuplicateCourseEnrollment, -1)
	}
	return w.acceptCandidate(t, user, -1)
}

// SelectUser picks a candidate by id, normally from the candidate list, and
// runs every eligibility check against fresh enrollments and occupancy.
// An empty id clears the selection.
func (w *EnrollmentWorkflow) SelectUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)

	w.mu.Lock()
	if err := w.lookupAllowedLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.candidate++
	w.st.clearCandidate()
	w.st.SearchEmail = ""
	if userID == "" {
		w.st.Phase = PhaseIdle
		w.commitUnlock()
		return nil
	}
	var user *domain.User
	for i := range w.st.Candidates {
		if w.st.Candidates[i].ID == userID {
			u := w.st.Candidates[i]
			user = &u
			break
		}
	}
	w.st.Phase = PhaseSearchingUser
	w.st.SelectedUserID = userID
	w.st.FoundUser = clonePtr(user)
	t := w.ticketLocked()
	ready := w.classReady
	w.commitUnlock()

	opCtx, done := bind(ctx, t.ctx)
	defer done()

	if user == nil {
		u, err := w.Store.Users().GetUserByID(opCtx, userID)
		if errors.Is(err, directory.ErrNotFound) {
			if !w.applyCandidate(t, func(s *State) {
				s.clearCandidate()
				s.Phase = PhaseUserNotFound
				s.Error = msgUserNotFound
			}) {
				return ErrSuperseded
			}
			return fmt.Errorf("%w: no user with id %q", ErrNotFound, userID)
		}
		if err != nil {
			return w.lookupFailed(ctx, t, "get user", err)
		}
		user = &u
	}

	class, err := w.awaitClass(opCtx, t, ready)
	if err != nil {
		return w.lookupFailed(ctx, t, "await class", err)
	}
	if class == nil {
		return w.acceptCandidate(t, *user, -1)
	}

	var (
		enrollments []domain.EnrollmentDetails
		occupancy   int
	)
	g, gctx := errgroup.WithContext(opCtx)
	g.Go(func() (err error) {
		enrollments, err = w.Store.Enrollments().ListByUser(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		occupancy, err = w.Store.Enrollments().CountByClass(gctx, class.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return w.lookupFailed(ctx, t, "check candidate", err)
	}

	d := eligibility.Evaluate(eligibility.Facts{
		Class:       *class,
		Enrollments: enrollments,
		Occupancy:   occupancy,
		Now:         w.now(),
	})
	if !d.Eligible {
		return w.refuseCandidate(ctx, t, *user, d.Reason, occupancy)
	}
	return w.acceptCandidate(t, *user, occupancy)
}

// acceptCandidate selects user. A negative occupancy leaves the known
// occupancy untouched.
func (w *EnrollmentWorkflow) acceptCandidate(t ticket, user domain.User, occupancy int) error {
	if !w.applyCandidate(t, func(s *State) {
		s.Phase = PhaseUserFound
		s.FoundUser = &user
		s.SelectedUserID = user.ID
		if occupancy >= 0 {
			s.Occupancy = occupancy
		}
	}) {
		return ErrSuperseded
	}
	t.log.Debug("candidate selected", slog.String("user_id", user.ID))
	return nil
}

func (w *EnrollmentWorkflow) refuseCandidate(ctx context.Context, t ticket, user domain.User, reason eligibility.Reason, occupancy int) error {
	if !w.applyCandidate(t, func(s *State) {
		s.Phase = PhaseUserBlocked
		s.FoundUser = &user
		s.SelectedUserID = ""
		s.Reason = reason
		s.Error = reason.Message()
		if occupancy >= 0 {
			s.Occupancy = occupancy
		}
	}) {
		return ErrSuperseded
	}
	t.log.InfoContext(ctx, "candidate refused",
		slog.String("user_id", user.ID),
		slog.String("reason", reason.String()),
	)
	return blocked(reason)
}

func (w *EnrollmentWorkflow) lookupFailed(ctx context.Context, t ticket, op string, err error) error {
	if !w.applyCandidate(t, func(s *State) {
		s.Phase = PhaseSearchFailed
		s.SelectedUserID = ""
		s.Error = displayMessage(err, msgSearchFailed)
	}) {
		return ErrSuperseded
	}
	t.log.WarnContext(ctx, "user lookup failed", slog.String("op", op), slog.Any("error", err))
	return storeErr(op, err)
}

// ============================================================================
// Submit
// ============================================================================

// Submit re-validates the selected candidate against freshly fetched class,
// occupancy and enrollments, then creates the enrollment. On success the
// session closes itself after AutoCloseDelay.
func (w *EnrollmentWorkflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	msg := w.st.submitBlocker()
	if msg == "" {
		msg = validateEnrollmentForm(w.st.SelectedUserID, w.st.ClassID)
	}
	if msg != "" {
		if w.st.Phase != PhaseSubmitting {
			w.st.Error = msg
			w.commitUnlock()
		} else {
			w.mu.Unlock()
		}
		return precondition(msg)
	}
	w.st.Phase = PhaseSubmitting
	w.st.Reason = eligibility.ReasonNone
	w.st.Error = ""
	t := w.ticketLocked()
	userID, classID := w.st.SelectedUserID, w.st.ClassID
	date := clonePtr(w.st.EnrollmentDate)
	w.commitUnlock()

	opCtx, done := bind(ctx, t.ctx)
	defer done()

	var (
		class       domain.Class
		occupancy   int
		enrollments []domain.EnrollmentDetails
	)
	g, gctx := errgroup.WithContext(opCtx)
	g.Go(func() (err error) {
		class, err = w.Store.Classes().GetClassByID(gctx, classID)
		return err
	})
	g.Go(func() (err error) {
		occupancy, err = w.Store.Enrollments().CountByClass(gctx, classID)
		return err
	})
	g.Go(func() (err error) {
		enrollments, err = w.Store.Enrollments().ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return w.submitFailed(ctx, t, "revalidate", err, msgValidateFailed)
	}

	now := w.now()
	d := eligibility.Evaluate(eligibility.Facts{
		Class:       class,
		Enrollments: enrollments,
		Occupancy:   occupancy,
		Now:         now,
	})
	if !d.Eligible {
		return w.submitRefused(ctx, t, class, occupancy, blocked(d.Reason))
	}
	if err := eligibility.ValidateEnrollmentDate(date, class, now); err != nil {
		return w.submitRefused(ctx, t, class, occupancy, &BlockedError{Message: err.Error(), Err: err})
	}

	if !w.sessionCurrent(t) {
		return ErrSuperseded
	}
	enrollment, err := w.Store.Enrollments().CreateEnrollment(opCtx, domain.NewEnrollment{
		UserID:         userID,
		ClassID:        classID,
		EnrollmentDate: date,
	})
	if err != nil {
		return w.submitFailed(ctx, t, "create enrollment", err, msgSubmitFailed)
	}

	t.log.InfoContext(ctx, "enrollment created",
		slog.String("enrollment_id", enrollment.ID),
		slog.String("user_id", userID),
	)

	w.mu.Lock()
	if w.session != t.session {
		// Closed while the create was in flight; the enrollment exists but
		// there is no session left to report it to.
		w.mu.Unlock()
		return nil
	}
	w.st.Phase = PhaseSuccess
	w.st.Class = &class
	w.st.Occupancy = occupancy + 1
	w.st.Enrollment = &enrollment
	session := t.session
	w.timer = time.AfterFunc(w.autoCloseDelay(), func() { w.autoClose(session, enrollment) })
	w.commitUnlock()
	return nil
}

func (w *EnrollmentWorkflow) submitRefused(ctx context.Context, t ticket, class domain.Class, occupancy int, be *BlockedError) error {
	if !w.applySession(t, func(s *State) {
		s.Phase = PhaseSubmitBlocked
		s.Class = &class
		s.Occupancy = occupancy
		s.Reason = be.Reason
		s.Error = be.Message
	}) {
		return ErrSuperseded
	}
	t.log.InfoContext(ctx, "enrollment refused",
		slog.String("reason", be.Reason.String()),
		slog.String("message", be.Message),
	)
	return be
}

func (w *EnrollmentWorkflow) submitFailed(ctx context.Context, t ticket, op string, err error, fallback string) error {
	if !w.applySession(t, func(s *State) {
		s.Phase = PhaseSubmitFailed
		s.Error = displayMessage(err, fallback)
	}) {
		return ErrSuperseded
	}
	t.log.WarnContext(ctx, "enrollment submit failed", slog.String("op", op), slog.Any("error", err))
	return storeErr(op, err)
}

func (w *EnrollmentWorkflow) autoClose(session uint64, e domain.Enrollment) {
	w.mu.Lock()
	if w.session != session || w.st.Phase != PhaseSuccess {
		w.mu.Unlock()
		return
	}
	w.endSessionLocked()
	w.commitUnlock()

	if w.OnClose != nil {
		w.OnClose()
	}
	if w.OnSuccess != nil {
		w.OnSuccess(e)
	}
}

// ============================================================================
// Loading
// ============================================================================

func (w *EnrollmentWorkflow) loadClass(ctx context.Context, classID string) (domain.Class, int, error) {
	class, err := w.Store.Classes().GetClassByID(ctx, classID)
	if err != nil {
		return domain.Class{}, 0, err
	}
	occupancy, err := w.Store.Enrollments().CountByClass(ctx, classID)
	if err != nil {
		return domain.Class{}, 0, err
	}
	return class, occupancy, nil
}

// loadCandidates returns every user not enrolled in any class of courseID.
func (w *EnrollmentWorkflow) loadCandidates(ctx context.Context, courseID string) ([]domain.User, error) {
	var (
		users    []domain.User
		enrolled []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = w.Store.Users().ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		enrolled, err = w.Store.Enrollments().EnrolledUserIDsInCourse(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(enrolled))
	for _, id := range enrolled {
		skip[id] = struct{}{}
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if _, ok := skip[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// awaitClass blocks until the session's class info resolves and returns the
// loaded class, or nil when it failed to load.
func (w *EnrollmentWorkflow) awaitClass(ctx context.Context, t ticket, ready <-chan struct{}) (*domain.Class, error) {
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session != t.session {
		return nil, ErrSuperseded
	}
	return clonePtr(w.st.Class), nil
}

// ============================================================================
// State plumbing
// ============================================================================

func (w *EnrollmentWorkflow) lookupAllowedLocked() error {
	switch {
	case !w.st.Open():
		return precondition("no class selected")
	case w.st.Phase == PhaseSubmitting:
		return precondition("an enrollment is being submitted")
	case w.st.Phase == PhaseSuccess:
		return precondition("the enrollment was already completed")
	}
	return nil
}

// endSessionLocked cancels in-flight work, stops the auto-close timer and
// resets the state. Every outstanding ticket becomes stale.
func (w *EnrollmentWorkflow) endSessionLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.session++
	w.candidate++
	w.sessionCtx = nil
	w.classReady = nil
	w.st = State{Phase: PhaseIdle}
}

func (w *EnrollmentWorkflow) ticketLocked() ticket {
	return ticket{
		session:   w.session,
		candidate: w.candidate,
		ctx:       w.sessionCtx,
		log: w.logger().With(
			slog.String("session_id", w.st.SessionID.String()),
			slog.String("class_id", w.st.ClassID),
		),
	}
}

func (w *EnrollmentWorkflow) sessionCurrent(t ticket) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session == t.session
}

func (w *EnrollmentWorkflow) applySession(t ticket, fn func(*State)) bool {
	w.mu.Lock()
	if w.session != t.session {
		w.mu.Unlock()
		return false
	}
	fn(&w.st)
	w.commitUnlock()
	return true
}

func (w *EnrollmentWorkflow) applyCandidate(t ticket, fn func(*State)) bool {
	w.mu.Lock()
	if w.session != t.session || w.candidate != t.candidate {
		w.mu.Unlock()
		return false
	}
	fn(&w.st)
	w.commitUnlock()
	return true
}

// commitUnlock snapshots the state, releases the lock and delivers the
// snapshot to OnChange. Deliveries are serialized and a snapshot older than
// one already delivered is dropped, so the last delivery is the newest state.
func (w *EnrollmentWorkflow) commitUnlock() {
	w.seq++
	seq := w.seq
	snap := w.st.clone()
	w.mu.Unlock()

	if w.OnChange == nil {
		return
	}
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	if seq <= w.delivered {
		return
	}
	w.delivered = seq
	w.OnChange(snap)
}

func (w *EnrollmentWorkflow) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func (w *EnrollmentWorkflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *EnrollmentWorkflow) autoCloseDelay() time.Duration {
	if w.AutoCloseDelay <= 0 {
		return DefaultAutoCloseDelay
	}
	return w.AutoCloseDelay
}

// bind returns a context that ends when either ctx or session ends.
func bind(ctx, session context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(session, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

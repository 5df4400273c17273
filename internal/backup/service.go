package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/storage"
)

var log = logging.GetLogger("backup")

// State is the phase of the backup service.
type State int

const (
	SignedOut State = iota
	SignedIn
	BackingUp
	Restoring
)

func (s State) String() string {
	switch s {
	case SignedIn:
		return "signed-in"
	case BackingUp:
		return "backup-in-progress"
	case Restoring:
		return "restore-in-progress"
	default:
		return "signed-out"
	}
}

// StatusKind styles a status message.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusLoading StatusKind = "loading"
)

// Status is a user-facing progress message. The zero Status clears the
// message line.
type Status struct {
	Kind    StatusKind
	Message string
}

// StatusFunc receives status updates. It may be called from the
// scheduler goroutine.
type StatusFunc func(Status)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// ConfirmRestorePrompt is asked before a restore overwrites local data.
const ConfirmRestorePrompt = "This will replace all your current bookmarks and settings with the backup. Are you sure you want to continue?"

const (
	msgConnecting     = "Connecting to Google..."
	msgSignedIn       = "Successfully connected to Google!"
	msgSignInFailed   = "Failed to connect to Google. Please try again."
	msgSignedOut      = "Successfully signed out."
	msgSignOutFailed  = "Failed to sign out. Please try again."
	msgBackingUp      = "Creating backup..."
	msgBackupDone     = "Backup created successfully! File: %s"
	msgBackupFailed   = "Failed to create backup. Please try again."
	msgRestoring      = "Restoring from backup..."
	msgRestoreDone    = "Backup restored successfully!"
	msgRestoreFailed  = "Failed to restore backup. Please try again."
	msgAutoBackupOn   = "Auto-backup enabled. Daily backups will be created automatically."
	msgAutoBackupOff  = "Auto-backup disabled."
	descriptionFormat = "HomeScreen bookmarks backup created on %s"
)

var (
	ErrNotSignedIn      = errors.New("Please sign in to Google first.")
	ErrNoBackupSelected = errors.New("Please select a backup from the history below to restore.")
	ErrBusy             = errors.New("a backup or restore is already running")
	ErrDeclined         = errors.New("restore declined")
	ErrTokenExpired     = errors.New("access token expired")
)

// StateStore persists AuthState. storage.Accessor satisfies it.
type StateStore interface {
	GetJSON(key string, v any) (bool, error)
	SetJSON(key string, v any) error
}

// NewServiceParams wires a Service.
type NewServiceParams struct {
	Auth  Authenticator
	Drive *Drive
	State StateStore
	// Data is the bookmark state that gets backed up and restored.
	Data     storage.Storage
	OnStatus StatusFunc
	Now      func() time.Time
	// RetryDelay is the shortest wait after a failed scheduled backup.
	RetryDelay time.Duration
}

// Service runs sign-in, backup and restore against Drive.
type Service struct {
	auth     Authenticator
	drive    *Drive
	store    StateStore
	data     storage.Storage
	onStatus StatusFunc
	now      func() time.Time
	retry    time.Duration

	mu       sync.Mutex
	auths    AuthState
	phase    State
	folderID string

	reschedule chan struct{}
	scheduling sync.Mutex
}

// NewService creates a Service. Call Load before use.
func NewService(params NewServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	onStatus := params.OnStatus
	if onStatus == nil {
		onStatus = func(Status) {}
	}
	retry := params.RetryDelay
	if retry <= 0 {
		retry = 15 * time.Minute
	}
	drive := params.Drive
	if drive == nil {
		drive = NewDrive(nil)
	}
	return &Service{
		auth:       params.Auth,
		drive:      drive,
		store:      params.State,
		data:       params.Data,
		onStatus:   onStatus,
		now:        now,
		retry:      retry,
		reschedule: make(chan struct{}, 1),
	}
}

// Load restores the persisted AuthState and hands any held token to the
// authenticator.
func (s *Service) Load() error {
	var st AuthState
	if _, err := s.store.GetJSON(AuthStateKey, &st); err != nil {
		return fmt.Errorf("load auth state: %w", err)
	}

	s.mu.Lock()
	s.auths = st
	s.phase = SignedOut
	if st.Authenticated() {
		s.phase = SignedIn
	}
	s.mu.Unlock()

	if st.Authenticated() {
		s.auth.SetToken(&oauth2.Token{
			AccessToken:  st.AccessToken,
			RefreshToken: st.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       fromMillis(st.LastUpdated).Add(TokenLifetime),
		})
	}
	return nil
}

// AuthState returns a copy of the current state.
func (s *Service) AuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auths
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// update applies fn, stamps LastUpdated and persists the result.
func (s *Service) update(fn func(*AuthState)) error {
	s.mu.Lock()
	next := s.auths
	fn(&next)
	next.LastUpdated = millis(s.now())
	s.mu.Unlock()

	if err := s.store.SetJSON(AuthStateKey, next); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}

	s.mu.Lock()
	s.auths = next
	s.mu.Unlock()
	return nil
}

func (s *Service) status(kind StatusKind, msg string) {
	s.onStatus(Status{Kind: kind, Message: msg})
}

// kick wakes the scheduler so it re-reads the state.
func (s *Service) kick() {
	select {
	case s.reschedule <- struct{}{}:
	default:
	}
}

// begin moves a signed-in service into a busy phase.
func (s *Service) begin(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case SignedOut:
		return ErrNotSignedIn
	case BackingUp, Restoring:
		return ErrBusy
	}
	s.phase = next
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == BackingUp || s.phase == Restoring {
		s.phase = SignedIn
	}
}

// token returns a usable access token without prompting, recording a
// refreshed one.
func (s *Service) token(ctx context.Context) (string, error) {
	st := s.AuthState()
	tok, err := s.auth.Token(ctx, false)
	if err != nil {
		if st.TokenExpired(s.now()) {
			return "", fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return "", err
	}
	if tok.AccessToken != st.AccessToken {
		log.Debug("Access token refreshed")
		err := s.update(func(a *AuthState) {
			a.AccessToken = tok.AccessToken
			if tok.RefreshToken != "" {
				a.RefreshToken = tok.RefreshToken
			}
		})
		if err != nil {
			return "", err
		}
	}
	return tok.AccessToken, nil
}

func (s *Service) folder(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	id := s.folderID
	s.mu.Unlock()
	if id != "" {
		return id, nil
	}

	id, err := s.drive.EnsureFolder(ctx, token, FolderName)
	if err != nil {
		return "", fmt.Errorf("backup folder: %w", err)
	}
	s.mu.Lock()
	s.folderID = id
	s.mu.Unlock()
	return id, nil
}

// SignIn runs the interactive sign-in and records the user's email.
func (s *Service) SignIn(ctx context.Context) error {
	s.status(StatusLoading, msgConnecting)

	err := func() error {
		tok, err := s.auth.Token(ctx, true)
		if err != nil {
			return err
		}
		email, err := s.drive.UserEmail(ctx, tok.AccessToken)
		if err != nil {
			return fmt.Errorf("user info: %w", err)
		}
		return s.update(func(a *AuthState) {
			a.IsSignedIn = true
			a.UserEmail = email
			a.AccessToken = tok.AccessToken
			a.RefreshToken = tok.RefreshToken
		})
	}()
	if err != nil {
		log.Warn("Sign-in failed", "error", err)
		s.status(StatusError, msgSignInFailed)
		return err
	}

	s.mu.Lock()
	s.phase = SignedIn
	s.mu.Unlock()

	log.Info("Signed in", "email", s.AuthState().UserEmail)
	s.status(StatusSuccess, msgSignedIn)
	s.kick()
	return nil
}

// SignOut revokes the held token and forgets the account. Backup history
// and the auto-backup flag are kept.
func (s *Service) SignOut(ctx context.Context) error {
	st := s.AuthState()
	if st.AccessToken != "" {
		tok := &oauth2.Token{AccessToken: st.AccessToken, RefreshToken: st.RefreshToken}
		if err := s.auth.Revoke(ctx, tok); err != nil {
			log.Warn("Token revoke failed", "error", err)
		}
	}
	s.auth.SetToken(nil)

	err := s.update(func(a *AuthState) {
		a.IsSignedIn = false
		a.UserEmail = ""
		a.AccessToken = ""
		a.RefreshToken = ""
	})
	if err != nil {
		log.Error("Sign-out failed", "error", err)
		s.status(StatusError, msgSignOutFailed)
		return err
	}

	s.mu.Lock()
	s.phase = SignedOut
	s.folderID = ""
	s.mu.Unlock()

	s.status(StatusSuccess, msgSignedOut)
	s.kick()
	return nil
}

// Backup uploads a snapshot of the current data.
func (s *Service) Backup(ctx context.Context) (File, error) {
	if err := s.begin(BackingUp); err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			s.status(StatusError, err.Error())
		}
		return File{}, err
	}
	defer s.end()

	s.status(StatusLoading, msgBackingUp)

	file, err := s.backup(ctx)
	if err != nil {
		log.Warn("Backup failed", "error", err)
		s.status(StatusError, msgBackupFailed)
		return File{}, err
	}

	log.Info("Backup created", "file", file.Name, "id", file.ID)
	s.status(StatusSuccess, fmt.Sprintf(msgBackupDone, file.Name))
	s.kick()
	return file, nil
}

func (s *Service) backup(ctx context.Context) (File, error) {
	store, err := s.data.Load()
	if err != nil {
		return File{}, fmt.Errorf("load data: %w", err)
	}
	token, err := s.token(ctx)
	if err != nil {
		return File{}, err
	}
	folderID, err := s.folder(ctx, token)
	if err != nil {
		return File{}, err
	}

	now := s.now()
	payload, err := NewEnvelope(store, now).Marshal()
	if err != nil {
		return File{}, err
	}
	description := fmt.Sprintf(descriptionFormat, now.Local().Format("1/2/2006, 3:04:05 PM"))

	file, err := s.drive.Upload(ctx, token, folderID, FileName(now), description, payload)
	if err != nil {
		return File{}, err
	}
	if file.Name == "" {
		file.Name = FileName(now)
	}

	err = s.update(func(a *AuthState) {
		a.LastBackupTime = millis(now)
	})
	return file, err
}

// History lists the newest backups.
func (s *Service) History(ctx context.Context) ([]File, error) {
	if s.State() == SignedOut {
		return nil, ErrNotSignedIn
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	folderID, err := s.folder(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.drive.List(ctx, token, folderID)
}

// Restore downloads backup id, validates it, asks confirm, and then
// overwrites the local folders, current folder and settings. A declined
// confirmation returns ErrDeclined and changes nothing.
func (s *Service) Restore(ctx context.Context, id string, confirm ConfirmFunc) (*model.Store, error) {
	if id == "" {
		s.status(StatusInfo, ErrNoBackupSelected.Error())
		return nil, ErrNoBackupSelected
	}
	if err := s.begin(Restoring); err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			s.status(StatusError, err.Error())
		}
		return nil, err
	}
	defer s.end()

	s.status(StatusLoading, msgRestoring)

	env, err := s.download(ctx, id)
	if err != nil {
		log.Warn("Restore failed", "id", id, "error", err)
		if errors.Is(err, ErrInvalidBackup) {
			s.status(StatusError, ErrInvalidBackup.Error())
		} else {
			s.status(StatusError, msgRestoreFailed)
		}
		return nil, err
	}

	if confirm != nil && !confirm(ConfirmRestorePrompt) {
		s.status("", "")
		return nil, ErrDeclined
	}

	store, err := s.data.Load()
	if err != nil {
		s.status(StatusError, msgRestoreFailed)
		return nil, fmt.Errorf("load data: %w", err)
	}
	if skipped := env.Apply(store); len(skipped) > 0 {
		log.Warn("Some settings were not restored", "keys", skipped)
	}
	if err := s.data.Save(store); err != nil {
		s.status(StatusError, msgRestoreFailed)
		return nil, fmt.Errorf("save restored data: %w", err)
	}

	log.Info("Backup restored", "id", id, "folders", len(store.Folders))
	s.status(StatusSuccess, msgRestoreDone)
	return store, nil
}

func (s *Service) download(ctx context.Context, id string) (Envelope, error) {
	token, err := s.token(ctx)
	if err != nil {
		return Envelope{}, err
	}
	data, err := s.drive.Download(ctx, token, id)
	if err != nil {
		return Envelope{}, err
	}
	return ParseEnvelope(data)
}

// SetAutoBackup turns the daily schedule on or off.
func (s *Service) SetAutoBackup(enabled bool) error {
	if err := s.update(func(a *AuthState) { a.AutoBackupEnabled = enabled }); err != nil {
		s.status(StatusError, err.Error())
		return err
	}
	if enabled {
		s.status(StatusSuccess, msgAutoBackupOn)
	} else {
		s.status(StatusSuccess, msgAutoBackupOff)
	}
	s.kick()
	return nil
}

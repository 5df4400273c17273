// Package backup copies the bookmark state to a Google Drive folder and
// restores it, by hand or on a daily schedule.
package backup

import (
	"time"

	"github.com/hako/durafmt"
)

const (
	ScopeDriveFile = "https://www.googleapis.com/auth/drive.file"
	ScopeEmail     = "https://www.googleapis.com/auth/userinfo.email"

	// AuthStateKey is the store key holding AuthState.
	AuthStateKey = "googleBackupAuthState"

	FolderName = "HomeScreen-Bookmarks-Backup"
	FilePrefix = "bookmarks-backup"

	AutoBackupInterval = 24 * time.Hour
	// TokenLifetime is how long an access token is trusted after the last
	// state update.
	TokenLifetime = time.Hour
)

// Scopes requested at sign-in.
var Scopes = []string{ScopeDriveFile, ScopeEmail}

// AuthState is the persisted sign-in and schedule state. Times are Unix
// milliseconds.
type AuthState struct {
	IsSignedIn        bool   `json:"isSignedIn"`
	UserEmail         string `json:"userEmail"`
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken,omitempty"`
	LastBackupTime    int64  `json:"lastBackupTime"`
	AutoBackupEnabled bool   `json:"autoBackupEnabled"`
	LastUpdated       int64  `json:"lastUpdated"`
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Authenticated reports a signed-in state holding a token.
func (a AuthState) Authenticated() bool {
	return a.IsSignedIn && a.AccessToken != ""
}

// TokenExpired reports a missing token or one older than TokenLifetime.
func (a AuthState) TokenExpired(now time.Time) bool {
	return a.AccessToken == "" || now.Sub(fromMillis(a.LastUpdated)) > TokenLifetime
}

// LastBackup returns the last successful backup time, zero if none.
func (a AuthState) LastBackup() time.Time {
	return fromMillis(a.LastBackupTime)
}

// ShouldAutoBackup reports whether a scheduled backup is due.
func (a AuthState) ShouldAutoBackup(now time.Time) bool {
	if !a.AutoBackupEnabled || !a.Authenticated() {
		return false
	}
	if a.LastBackupTime == 0 {
		return true
	}
	return now.Sub(a.LastBackup()) >= AutoBackupInterval
}

// NextAutoBackup returns how long to wait before the next scheduled
// attempt: 24h after the last backup, or 24h from now when there was none.
func (a AuthState) NextAutoBackup(now time.Time) time.Duration {
	next := now.Add(AutoBackupInterval)
	if a.LastBackupTime != 0 {
		next = a.LastBackup().Add(AutoBackupInterval)
	}
	return max(0, next.Sub(now))
}

// LastBackupAgo describes the last backup time relative to now.
func (a AuthState) LastBackupAgo(now time.Time) string {
	if a.LastBackupTime == 0 {
		return "never"
	}
	d := now.Sub(a.LastBackup()).Truncate(time.Minute)
	if d < time.Minute {
		return "just now"
	}
	return durafmt.Parse(d).LimitFirstN(2).String() + " ago"
}

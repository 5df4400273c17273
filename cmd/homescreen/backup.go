package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/backup"
)

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Google Drive backups",
		Description: `Backups are JSON snapshots of folders, the current folder and
settings, stored in a "HomeScreen Backups" folder on Drive. The daily
automatic backup runs while "homescreen serve" is up.`,
		Action: backupStatus,
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "connect a Google account",
				Action: backupLogin,
			},
			{
				Name:   "logout",
				Usage:  "revoke access and forget the account",
				Action: backupLogout,
			},
			{
				Name:   "now",
				Usage:  "create a backup immediately",
				Action: backupNow,
			},
			{
				Name:   "list",
				Usage:  "list backups, newest first",
				Action: backupList,
			},
			{
				Name:      "restore",
				Usage:     "replace local data with a backup",
				ArgsUsage: "<id>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:   "id",
						Config: cli.StringConfig{TrimSpace: true},
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "don't ask for confirmation",
					},
				},
				Action: backupRestore,
			},
			{
				Name:      "auto",
				Usage:     "turn the daily backup on or off",
				ArgsUsage: "on|off",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:   "state",
						Config: cli.StringConfig{TrimSpace: true},
					},
				},
				Action: backupAuto,
			},
		},
	}
}

// printStatus shows service progress on the terminal. Failures are left to
// the returned error.
func printStatus(st backup.Status) {
	switch st.Kind {
	case backup.StatusSuccess:
		fmt.Println("✓ " + st.Message)
	case backup.StatusInfo, backup.StatusLoading:
		fmt.Println(st.Message)
	}
}

func backupService(ctx context.Context) (*backup.Service, error) {
	e := envFrom(ctx)
	if e.cfg.Backup.ClientID == "" {
		return nil, fmt.Errorf("no OAuth client configured: set [backup] client_id in %s", e.cfgPath)
	}
	return e.backupService(printStatus)
}

func backupStatus(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	st := svc.AuthState()
	fmt.Printf("State:        %s\n", svc.State())
	if st.UserEmail != "" {
		fmt.Printf("Account:      %s\n", st.UserEmail)
	}
	auto := "off"
	if st.AutoBackupEnabled {
		auto = "on"
	}
	fmt.Printf("Auto-backup:  %s\n", auto)
	fmt.Printf("Last backup:  %s\n", st.LastBackupAgo(time.Now()))
	return nil
}

func backupLogin(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	return svc.SignIn(ctx)
}

func backupLogout(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	return svc.SignOut(ctx)
}

func backupNow(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Backup(ctx)
	return err
}

func backupList(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	files, err := svc.History(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No backups yet.")
		return nil
	}
	for _, f := range files {
		fmt.Printf("%s  %s  %12s  %s\n", f.ID, f.CreatedTime.Local().Format("2006-01-02 15:04"), f.SizeLabel(), f.Name)
	}
	return nil
}

func backupRestore(ctx context.Context, cmd *cli.Command) error {
	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	confirm := askYesNo
	if cmd.Bool("yes") {
		confirm = func(string) bool { return true }
	}
	if _, err := svc.Restore(ctx, cmd.StringArg("id"), confirm); err != nil {
		if errors.Is(err, backup.ErrDeclined) {
			return errCancelled
		}
		return err
	}
	return nil
}

func backupAuto(ctx context.Context, cmd *cli.Command) error {
	var enabled bool
	switch strings.ToLower(cmd.StringArg("state")) {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
	default:
		return fmt.Errorf("expected on or off, got %q", cmd.StringArg("state"))
	}

	svc, err := backupService(ctx)
	if err != nil {
		return err
	}
	return svc.SetAutoBackup(enabled)
}

// askYesNo prompts on stdin. Anything but y or yes declines.
func askYesNo(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

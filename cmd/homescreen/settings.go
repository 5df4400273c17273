package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/model"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:   "settings",
		Usage:  "show or change display settings",
		Action: settingsGet,
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print one setting, or all of them",
				ArgsUsage: "[key]",
				Action:    settingsGet,
			},
			{
				Name:      "set",
				Usage:     "change a setting",
				ArgsUsage: "<key> <value>",
				Action:    settingsSet,
			},
			{
				Name:   "reset",
				Usage:  "restore every setting to its default",
				Action: settingsReset,
			},
		},
	}
}

// printSetting keeps long data URLs from flooding the terminal.
func printSetting(key string, v any) {
	s := fmt.Sprint(v)
	if strings.HasPrefix(s, "data:") && len(s) > 48 {
		s = s[:48] + "..."
	}
	fmt.Printf("%-24s %s\n", key, s)
}

func settingsGet(ctx context.Context, cmd *cli.Command) error {
	settings, err := envFrom(ctx).store.Settings()
	if err != nil {
		return err
	}

	if key := cmd.Args().First(); key != "" {
		v, err := settings.Get(key)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	}

	values := settings.Map()
	for _, key := range model.SettingKeys() {
		printSetting(key, values[key])
	}
	return nil
}

func settingsSet(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: homescreen settings set <key> <value>")
	}
	key := cmd.Args().Get(0)
	value := strings.Join(cmd.Args().Slice()[1:], " ")

	settings, err := envFrom(ctx).store.SetSetting(key, value)
	if err != nil {
		return err
	}
	v, _ := settings.Get(key)
	fmt.Print("✓ ")
	printSetting(key, v)
	return nil
}

func settingsReset(ctx context.Context, cmd *cli.Command) error {
	if err := envFrom(ctx).store.SetSettings(model.DefaultSettings()); err != nil {
		return err
	}
	fmt.Println("✓ Settings reset to defaults")
	return nil
}

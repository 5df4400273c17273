package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/model"
)

func todoCommand() *cli.Command {
	return &cli.Command{
		Name:   "todo",
		Usage:  "the to-do list",
		Action: todoList,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add an item",
				ArgsUsage: "<text...>",
				Action:    todoAdd,
			},
			{
				Name:   "list",
				Usage:  "show the list",
				Action: todoList,
			},
			{
				Name:      "done",
				Usage:     "check or uncheck item n",
				ArgsUsage: "<n>",
				Action:    todoToggle,
			},
			{
				Name:      "rm",
				Usage:     "delete item n",
				ArgsUsage: "<n>",
				Action:    todoDelete,
			},
			{
				Name:      "mv",
				Usage:     "move item n to position m",
				ArgsUsage: "<n> <m>",
				Action:    todoMove,
			},
			{
				Name:   "clear",
				Usage:  "empty the list (undo with restore)",
				Action: todoClear,
			},
			{
				Name:   "restore",
				Usage:  "bring back the last cleared list",
				Action: todoRestore,
			},
		},
	}
}

// updateStore loads, mutates and saves the whole store.
func updateStore(ctx context.Context, fn func(*model.Store) error) (*model.Store, error) {
	e := envFrom(ctx)
	store, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(store); err != nil {
		return nil, err
	}
	return store, e.store.Save(store)
}

// itemArg parses the 1-based item number at position i.
func itemArg(cmd *cli.Command, i int) (int, error) {
	raw := cmd.Args().Get(i)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected an item number, got %q", raw)
	}
	return n - 1, nil
}

func printToDos(items []model.ToDoItem) {
	if len(items) == 0 {
		fmt.Println("Nothing to do.")
		return
	}
	for i, item := range items {
		box := "[ ]"
		if item.Checked {
			box = "[x]"
		}
		fmt.Printf("%2d. %s %s\n", i+1, box, item.Display())
	}
}

func todoList(ctx context.Context, cmd *cli.Command) error {
	items, err := envFrom(ctx).store.ToDoList()
	if err != nil {
		return err
	}
	printToDos(items)
	return nil
}

func todoAdd(ctx context.Context, cmd *cli.Command) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	store, err := updateStore(ctx, func(s *model.Store) error {
		if !s.AddToDo(text) {
			return fmt.Errorf("to-do text is empty")
		}
		return nil
	})
	if err != nil {
		return err
	}
	printToDos(store.ToDoList)
	return nil
}

func todoToggle(ctx context.Context, cmd *cli.Command) error {
	i, err := itemArg(cmd, 0)
	if err != nil {
		return err
	}
	store, err := updateStore(ctx, func(s *model.Store) error { return s.ToggleToDo(i) })
	if err != nil {
		return err
	}
	printToDos(store.ToDoList)
	return nil
}

func todoDelete(ctx context.Context, cmd *cli.Command) error {
	i, err := itemArg(cmd, 0)
	if err != nil {
		return err
	}
	store, err := updateStore(ctx, func(s *model.Store) error { return s.DeleteToDo(i) })
	if err != nil {
		return err
	}
	printToDos(store.ToDoList)
	return nil
}

func todoMove(ctx context.Context, cmd *cli.Command) error {
	from, err := itemArg(cmd, 0)
	if err != nil {
		return err
	}
	to, err := itemArg(cmd, 1)
	if err != nil {
		return err
	}
	store, err := updateStore(ctx, func(s *model.Store) error { return s.MoveToDo(from, to) })
	if err != nil {
		return err
	}
	printToDos(store.ToDoList)
	return nil
}

func todoClear(ctx context.Context, cmd *cli.Command) error {
	if _, err := updateStore(ctx, func(s *model.Store) error {
		s.ClearToDoList()
		return nil
	}); err != nil {
		return err
	}
	fmt.Println("✓ Cleared. Run \"homescreen todo restore\" to undo.")
	return nil
}

func todoRestore(ctx context.Context, cmd *cli.Command) error {
	store, err := updateStore(ctx, func(s *model.Store) error { return s.RestoreToDoList() })
	if err != nil {
		return err
	}
	printToDos(store.ToDoList)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/AnatoleLucet/hooks"
)

const toggleKey = "toggle"

type userRow struct {
	User
	Changes int
}

// userCard renders one user. Its active flag is local state seeded from the
// config, and changes counts how often the flag actually flipped.
func userCard(u User, toggles map[int]func()) func() userRow {
	return func() userRow {
		active, setActive := hooks.UseState(u.Active)
		changes, setChanges := hooks.UseState(-1)

		toggles[u.ID] = func() { setActive.Update(func(a bool) bool { return !a }) }

		hooks.UseEffect(func() {
			setChanges.Update(func(c int) int { return c + 1 })
		}, hooks.On(active))

		row := userRow{User: u, Changes: max(changes, 0)}
		row.Active = active
		return row
	}
}

func writeUsers(w io.Writer, rows []userRow) {
	active := 0
	changes := 0

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "name", "role", "status", "changes"})
	for _, row := range rows {
		status := "inactive"
		if row.Active {
			status = "active"
			active++
		}
		changes += row.Changes

		table.Append([]string{
			strconv.Itoa(row.ID),
			row.Name,
			row.Role,
			status,
			humanize.Comma(int64(row.Changes)),
		})
	}
	table.SetFooter([]string{
		"", "",
		humanize.Comma(int64(len(rows))) + " users",
		humanize.Comma(int64(active)) + " active",
		humanize.Comma(int64(changes)),
	})
	table.Render()
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Mount one component per configured user and list them",
		Flags: append(commonFlags(),
			&cli.IntSliceFlag{
				Name:  toggleKey,
				Usage: "IDs of users whose active flag is flipped after mounting",
			},
		),
		Action: runUsers,
	}
}

func runUsers(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}

	root := hooks.NewRoot(hooks.WithLogger(runtimeLogger(cmd)))
	defer root.Dispose()

	toggles := make(map[int]func(), len(config.Users))
	cards := make([]*hooks.Component[userRow], 0, len(config.Users))

	for _, u := range config.Users {
		card, err := hooks.Mount(root, userCard(u, toggles))
		if err != nil {
			return fmt.Errorf("mount user %d: %w", u.ID, err)
		}
		cards = append(cards, card)
	}

	ids := cmd.IntSlice(toggleKey)
	hooks.Batch(func() {
		for _, id := range ids {
			toggle, ok := toggles[int(id)]
			if !ok {
				continue
			}
			toggle()
		}
	})

	rows := make([]userRow, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, card.Output())
	}
	slices.SortFunc(rows, func(a, b userRow) int { return a.ID - b.ID })

	writeUsers(os.Stdout, rows)
	return nil
}

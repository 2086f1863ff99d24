package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/AnatoleLucet/hooks"
)

const iterationsKey = "iterations"

// benchComponent declares height state slots and one effect over all of them.
// Every pass bumps the first slot from the outside.
func benchComponent(height int, setters []hooks.Setter[int], effects *int) func() int {
	return func() int {
		values := make([]any, height)
		sum := 0
		for i := range height {
			v, set := hooks.UseState(0)
			if i == 0 {
				setters[0] = set
			}
			values[i] = v
			sum += v
		}

		hooks.UseEffect(func() {
			*effects++
		}, hooks.On(values...))

		return sum
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Time batched updates across width x height component grids",
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:  iterationsKey,
				Usage: "Updates timed per grid",
			},
		),
		Action: runBench,
	}
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}
	iters := config.Bench.Iterations
	if cmd.IsSet(iterationsKey) {
		iters = int(cmd.Int(iterationsKey))
	}
	if iters <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", iters)
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Hooks")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "passes", "effects", "avg", "min", "p75", "p99", "max"})

	for _, w := range config.Bench.Widths {
		for _, h := range config.Bench.Heights {
			if err := ctx.Err(); err != nil {
				return err
			}

			row, err := benchGrid(cmd, w, h, iters)
			if err != nil {
				return err
			}
			tbl.AppendRow(row)
		}
	}

	tbl.Render()
	return nil
}

func benchGrid(cmd *cli.Command, w, h, iters int) (table.Row, error) {
	root := hooks.NewRoot(hooks.WithLogger(runtimeLogger(cmd)))
	defer root.Dispose()

	effects := 0
	setters := make([][]hooks.Setter[int], w)
	components := make([]*hooks.Component[int], w)

	for i := range w {
		setters[i] = make([]hooks.Setter[int], 1)

		c, err := hooks.Mount(root, benchComponent(h, setters[i], &effects))
		if err != nil {
			return nil, fmt.Errorf("mount %dx%d: %w", w, h, err)
		}
		components[i] = c
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for range iters {
		start := time.Now()
		hooks.Batch(func() {
			for _, s := range setters {
				s[0].Update(func(prev int) int { return prev + 1 })
			}
		})
		tach.AddTime(time.Since(start))
	}

	passes := 0
	for _, c := range components {
		passes += c.Passes()
	}

	calc := tach.Calc()
	return table.Row{
		fmt.Sprintf("update: %d * %d", w, h),
		humanize.Comma(int64(passes)),
		humanize.Comma(int64(effects)),
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	}, nil
}

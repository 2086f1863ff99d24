package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"github.com/valyala/quicktemplate"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/hooks"
)

const (
	clicksKey   = "clicks"
	durationKey = "duration"
	htmlKey     = "html"
	snapshotKey = "snapshot"
)

type counterView struct {
	Count   int
	Seconds int
	Title   string
}

// counterActions are the button handlers of the counter, rebound on every render.
type counterActions struct {
	mu sync.Mutex

	increment func()
	decrement func()
	reset     func()
	stop      func()
}

func (a *counterActions) bind(increment, decrement, reset, stop func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.increment, a.decrement, a.reset, a.stop = increment, decrement, reset, stop
}

func (a *counterActions) Increment() { a.mu.Lock(); fn := a.increment; a.mu.Unlock(); fn() }
func (a *counterActions) Decrement() { a.mu.Lock(); fn := a.decrement; a.mu.Unlock(); fn() }
func (a *counterActions) Reset()     { a.mu.Lock(); fn := a.reset; a.mu.Unlock(); fn() }
func (a *counterActions) Stop()      { a.mu.Lock(); fn := a.stop; a.mu.Unlock(); fn() }

// counterApp is the count + seconds component. The title effect follows count,
// the ticker effect runs while ticking and is stopped by its cleanup.
func counterApp(actions *counterActions, tick time.Duration, present func(counterView)) func() counterView {
	return func() counterView {
		count, setCount := hooks.UseState(0)
		seconds, setSeconds := hooks.UseState(0)
		title, setTitle := hooks.UseState("")
		ticking, setTicking := hooks.UseState(true)

		actions.bind(
			func() { setCount.Update(func(c int) int { return c + 1 }) },
			func() { setCount.Update(func(c int) int { return c - 1 }) },
			func() { setCount.Set(0) },
			func() { setTicking.Set(false) },
		)

		hooks.UseEffect(func() {
			setTitle.Set(fmt.Sprintf("Count is %d", count))
		}, hooks.On(count))

		hooks.UseEffect(func() func() {
			if !ticking {
				return nil
			}

			ticker := time.NewTicker(tick)
			done := make(chan struct{})

			// the cleanup may run on this goroutine when a tick's pass tears the
			// component down, so it must not wait for the goroutine to exit
			go func() {
				for {
					select {
					case <-ticker.C:
						setSeconds.Update(func(s int) int { return s + 1 })
					case <-done:
						return
					}
				}
			}()

			return func() {
				ticker.Stop()
				close(done)
			}
		}, hooks.On(ticking))

		view := counterView{Count: count, Seconds: seconds, Title: title}

		hooks.UseEffect(func() {
			present(view)
		}, hooks.Always)

		return view
	}
}

func writeCounterText(w io.Writer, v counterView) {
	fmt.Fprintf(w, "%s\n  Count: %d\n  Seconds running: %s\n", v.Title, v.Count, humanize.Comma(int64(v.Seconds)))
}

func writeCounterHTML(w io.Writer, v counterView) {
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)

	qw.N().S(`<div style="padding: 24px"><h1>`)
	qw.E().S(v.Title)
	qw.N().S(`</h1><p><strong>Count:</strong> `)
	qw.N().D(v.Count)
	qw.N().S(`</p><p><strong>Seconds running:</strong> `)
	qw.N().D(v.Seconds)
	qw.N().S("</p></div>\n")
}

// screen prints every committed view, redrawing in place on a terminal.
type screen struct {
	mu sync.Mutex

	out    io.Writer
	redraw bool
	write  func(io.Writer, counterView)
}

func newScreen(out *os.File, html bool) *screen {
	s := &screen{
		out:    out,
		redraw: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
		write:  writeCounterText,
	}
	if html {
		s.write = writeCounterHTML
	}
	return s
}

func (s *screen) present(v counterView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.redraw {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
	s.write(s.out, v)
}

func counterCommand() *cli.Command {
	return &cli.Command{
		Name:  "counter",
		Usage: "Run the counter component: clicks, a title effect and a seconds ticker",
		Flags: append(commonFlags(),
			&cli.UintFlag{
				Name:  clicksKey,
				Usage: "Number of increment clicks to simulate",
			},
			&cli.DurationFlag{
				Name:  durationKey,
				Usage: "How long to keep the component mounted",
			},
			&cli.BoolFlag{
				Name:  htmlKey,
				Usage: "Render the component as HTML",
			},
			&cli.BoolFlag{
				Name:  snapshotKey,
				Usage: "Print the component's hook state as YAML before unmounting",
			},
		),
		Action: runCounter,
	}
}

func runCounter(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}
	if cmd.IsSet(clicksKey) {
		config.Counter.Clicks = uint64(cmd.Uint(clicksKey))
	}
	if cmd.IsSet(durationKey) {
		config.Counter.Duration = cmd.Duration(durationKey)
	}

	logger := runtimeLogger(cmd)
	root := hooks.NewRoot(
		hooks.WithLogger(logger),
		hooks.WithErrorHandler(func(id hooks.ID, err error) {
			logger.Printf("counter %d: %v", id, err)
		}),
	)

	out := newScreen(os.Stdout, cmd.Bool(htmlKey))
	actions := &counterActions{}

	counter, err := hooks.Mount(root, counterApp(actions, config.Counter.Tick, out.present))
	if err != nil {
		return fmt.Errorf("mount counter: %w", err)
	}

	for range config.Counter.Clicks {
		actions.Increment()
	}

	select {
	case <-time.After(config.Counter.Duration):
	case <-ctx.Done():
	}

	actions.Stop()

	if cmd.Bool(snapshotKey) {
		data, err := yaml.Marshal(counter.Snapshot())
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		os.Stdout.Write(data)
	}

	return root.Dispose()
}

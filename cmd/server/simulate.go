package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
)

const simulateTick = 100 * time.Millisecond

// timelineEvent is one observed change during a simulated visit
type timelineEvent struct {
	At        time.Duration
	Component string
	Detail    string
}

// timeline collects events stamped relative to the simulation start
type timeline struct {
	clock *scheduler.ManualClock
	start time.Time

	mu     sync.Mutex
	events []timelineEvent
	last   map[string]string
}

func (t *timeline) add(component, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last[component] == detail {
		return
	}
	t.last[component] = detail
	t.events = append(t.events, timelineEvent{
		At:        t.clock.Now().Sub(t.start),
		Component: component,
		Detail:    detail,
	})
}

func simulateCmd() *cobra.Command {
	var (
		device   string
		duration time.Duration
		reduced  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a first visit on a fake clock",
		Long: `Boots a throwaway session on a manual clock, lets the boot sequence and
the guided tour run on their own and prints every phase, step and
notification with the time it happened.

Storage is always in memory; the configured backend is never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := *cfg
			sim.Storage = config.StorageConfig{Backend: config.BackendMemory}
			if device != "" {
				sim.Desktop.Device = device
			}
			if cmd.Flags().Changed("reduced-motion") {
				sim.Desktop.ReducedMotion = reduced
			}

			events, err := simulate(&sim, logger.Quiet(zapcore.WarnLevel), duration)
			if err != nil {
				return err
			}
			renderTimeline(os.Stdout, events)
			return nil
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "device category: desktop or mobile (overrides DEVICE)")
	cmd.Flags().DurationVar(&duration, "duration", time.Minute, "how much simulated time to run")
	cmd.Flags().BoolVar(&reduced, "reduced-motion", false, "halve every boot and tour duration")
	return cmd
}

// simulate mounts a fresh session and advances its clock until the tour is
// over or limit has passed. The front end's ghost drag is acted out as soon
// as the tour waits for it.
func simulate(cfg *config.Config, logger *logging.Logger, limit time.Duration) ([]timelineEvent, error) {
	clock := scheduler.NewManualClock(time.Now())
	session, err := server.NewSession(cfg, logger,
		server.WithClock(clock),
		server.WithStorage(persist.NewMemoryStorage()),
		server.WithRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	tl := &timeline{clock: clock, start: clock.Now(), last: make(map[string]string)}
	unsubscribe := []func(){
		session.Boot.Subscribe(func(p boot.Phase) { tl.add("boot", string(p)) }),
		session.Tour.Subscribe(func(s onboarding.Status) { tl.add("tour", string(s.Step)) }),
		session.Notify.Subscribe(func(v notify.View) {
			if v.Current != nil {
				tl.add("notification", v.Current.Notification.Title)
			}
		}),
	}
	defer func() {
		for _, stop := range unsubscribe {
			stop()
		}
	}()

	session.Start(context.Background())
	session.Boot.Mount()

	dragged := false
	for elapsed := time.Duration(0); elapsed < limit; elapsed += simulateTick {
		clock.Advance(simulateTick)

		if !dragged && session.Tour.Step() == onboarding.StepWindowDrag {
			dragged = true
			session.Tour.OnGhostDragComplete()
		}
		if session.Tour.Step() == onboarding.StepComplete && session.Notify.View().Current == nil {
			break
		}
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]timelineEvent(nil), tl.events...), nil
}

func renderTimeline(w io.Writer, events []timelineEvent) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Time", "Component", "Event"})
	for _, e := range events {
		tw.AppendRow(table.Row{fmt.Sprintf("%6.1fs", e.At.Seconds()), e.Component, e.Detail})
	}
	tw.Render()
}

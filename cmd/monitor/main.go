package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"time"

	termui "github.com/gizak/termui/v3"

	"github.com/genc-murat/relaymon/internal/app"
	"github.com/genc-murat/relaymon/internal/client"
	"github.com/genc-murat/relaymon/internal/config"
	"github.com/genc-murat/relaymon/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("monitor: %v", err)
	}

	ctrl, err := client.DialWithRetry(
		cfg.Control.Address, cfg.Control.Password,
		cfg.Control.DialTimeout, cfg.Control.RequestTimeout,
		client.RetryConfig{Attempts: 5, Delay: time.Second, MaxDelay: 10 * time.Second},
	)
	if err != nil {
		log.Fatalf("monitor: cannot reach control port %s: %v", cfg.Control.Address, err)
	}
	defer ctrl.Close()

	if err := ctrl.Subscribe(); err != nil {
		log.Fatalf("monitor: subscribing to daemon events: %v", err)
	}

	monitor := app.NewMonitor(cfg, ctrl, ctrl.Events())

	if cfg.State.Path != "" {
		covered, err := monitor.PrepopulateFromState(cfg.State.Path, cfg.State.LockTimeout)
		if err != nil {
			log.Printf("monitor: skipping state prepopulation: %v", err)
		} else {
			log.Printf("monitor: prepopulated %s of history from %s",
				covered.Round(time.Second), cfg.State.Path)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := monitor.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("monitor: %v", err)
		}
	}()

	if err := termui.Init(); err != nil {
		log.Fatalf("monitor: initializing terminal ui: %v", err)
	}
	defer termui.Close()

	dash := ui.NewDashboard()
	render := func() {
		index := monitor.DisplayIndex()
		counters := monitor.Metrics()
		counters.EventsDropped = ctrl.DroppedEvents()
		dash.Render(monitor.Snapshot(), index, cfg.Graph.Intervals[index], counters)
	}
	render()

	uiEvents := termui.PollEvents()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev := <-uiEvents:
			switch {
			case ev.ID == "q" || ev.ID == "<C-c>":
				return
			case ev.Type == termui.ResizeEvent:
				payload := ev.Payload.(termui.Resize)
				dash.Resize(payload.Width, payload.Height)
				termui.Clear()
				render()
			case len(ev.ID) == 1 && ev.ID[0] >= '1' && ev.ID[0] <= '9':
				index, _ := strconv.Atoi(ev.ID)
				monitor.SetDisplayIndex(index - 1)
				render()
			}
		case <-ticker.C:
			if monitor.TakeLayoutChange() {
				termui.Clear()
			}
			render()
		}
	}
}

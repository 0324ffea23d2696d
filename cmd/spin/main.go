// Command spin spins a wheel once without a browser and prints the winner.
//
// Names come from -names when given, otherwise from the configured storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gogpu/gg"

	"spinwheel/internal/config"
	"spinwheel/internal/kvstore"
	"spinwheel/internal/names"
	"spinwheel/internal/raster"
	"spinwheel/internal/wheel"
)

func main() {
	var (
		list     = flag.String("names", "", "comma separated names; overrides storage")
		winner   = flag.String("winner", "", "predetermined winner, used with -names")
		duration = flag.Duration("duration", 0, "spin duration; 0 keeps the configured value")
		pngPath  = flag.String("png", "", "write the settled wheel as PNG to this path")
		size     = flag.Int("size", raster.DefaultSize, "PNG edge length in pixels")
		verbose  = flag.Bool("v", false, "log spin events")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger)

	if err := run(logger, *list, *winner, *duration, *pngPath, *size); err != nil {
		fmt.Fprintln(os.Stderr, "spin:", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, list, winner string, duration time.Duration, pngPath string, size int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cfg.StorageOptions()
	if list != "" {
		opts = kvstore.Options{Driver: kvstore.DriverMemory}
	}
	kv, err := kvstore.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer kv.Close()

	repo := names.NewRepository(kv, logger)
	if list != "" {
		if _, err := repo.Replace(ctx, strings.Split(list, ",")); err != nil {
			return err
		}
		if err := repo.SetWinner(ctx, winner); err != nil {
			return err
		}
	}

	settings := cfg.WheelSettings()
	if duration > 0 {
		settings.Duration = duration
	}
	store := wheel.NewStore(repo, settings, nil, logger)
	instance, err := store.CreateWheel(ctx)
	if err != nil {
		return err
	}

	hub := store.Broadcaster(instance.ID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	outcome, err := store.Spin(ctx, instance.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "spinning for %v...\n", outcome.Duration)

	if err := waitSettled(ctx, sub, outcome.SettlesAt()); err != nil {
		return err
	}
	instance.AdvanceIfNeeded(time.Now().UTC())
	st, ok := instance.LastSettlement()
	if !ok || st.SpinID != outcome.ID {
		return fmt.Errorf("spin %s did not settle", outcome.ID)
	}
	if !st.Consistent() {
		return fmt.Errorf("settled on index %d, selected %d", st.SettledIndex, st.WinningIndex)
	}
	fmt.Println(st.Winner)

	if pngPath == "" {
		return nil
	}
	f, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	if err := raster.WheelPNG(f, instance.Snapshot(time.Now().UTC()), size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// waitSettled blocks until the settle loop announces a settlement, with a
// grace period past the deadline in case the announcement is missed.
func waitSettled(ctx context.Context, sub <-chan string, settlesAt time.Time) error {
	timeout := time.NewTimer(time.Until(settlesAt) + 2*time.Second)
	defer timeout.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return nil
		case event, ok := <-sub:
			if !ok || event == wheel.EventSettled {
				return nil
			}
		}
	}
}

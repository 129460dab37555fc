package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smazurov/audionode/internal/bridge"
	"github.com/smazurov/audionode/internal/logging"
)

// CreateMonitorCmd creates the monitor command: it dumps the raw action
// stream to stdout without sending any notifications. Useful for checking
// what the daemon would react to on a given machine.
func CreateMonitorCmd() *cobra.Command {
	var logJSON bool
	var channelCapacity int

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Dump the raw audio action stream",
		Long: `Connects to the audio server and prints every action the daemon would ` +
			`process (entry added, volume changed, entry removed) until interrupted.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "warn",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("monitor")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			supervisor := bridge.NewSupervisor(bridge.Config{
				ChannelCapacity: channelCapacity,
				Logger:          logger,
			})
			if err := supervisor.Start(ctx); err != nil {
				logger.Error("Failed to start event loop", "error", err)
				os.Exit(1)
			}

			for a := range supervisor.Actions() {
				printAction(a)
			}
			<-supervisor.Done()
		},
	}

	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")
	cmd.Flags().IntVar(&channelCapacity, "channel-capacity", bridge.DefaultChannelCapacity, "Action channel capacity")

	return cmd
}

func printAction(a bridge.Action) {
	switch a.Kind {
	case bridge.ActionEntryAdd:
		fmt.Printf("add    id=%d kind=%s label=%q name=%q\n",
			a.ID, a.Entry.Kind, a.Entry.DisplayLabel(), a.Entry.Name)
	case bridge.ActionVolumeChange:
		vol := "-"
		if a.Volume.Volume != nil {
			vol = fmt.Sprintf("%.2f", *a.Volume.Volume)
		}
		mute := "-"
		if a.Volume.Mute != nil {
			mute = fmt.Sprintf("%t", *a.Volume.Mute)
		}
		fmt.Printf("volume id=%d vol=%s mute=%s channels=%d\n",
			a.ID, vol, mute, len(a.Volume.ChannelVolumes))
	case bridge.ActionEntryRemove:
		fmt.Printf("remove id=%d\n", a.ID)
	case bridge.ActionShutdown:
		fmt.Println("shutdown")
	}
}

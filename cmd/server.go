package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/input"
	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/network"
	"github.com/edgehop/edgehop/internal/protocol"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serverPort  int
	sendTo      string
	grabDevices bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run Edgehop in server mode (share this host's input)",
	Long: `Run Edgehop in server mode on the host whose mouse and keyboard are
shared. Captured input is forwarded to the peer configured for the
chosen direction, and the local keyboard layout is served to peers
that request it.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Port for the event channel and blob listener")
	serverCmd.Flags().StringVarP(&sendTo, "direction", "d", "", "Direction to forward input to (left/right/top/bottom)")
	serverCmd.Flags().BoolVarP(&grabDevices, "grab", "g", false, "Grab input devices exclusively while forwarding")

	_ = viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
}

func runServer(cmd *cobra.Command, args []string) error {
	// evdev device nodes are root-only on most distributions
	if os.Geteuid() != 0 {
		logger.Warn("Not running as root; opening /dev/input devices may fail")
	}

	cfg := config.Get()
	if serverPort == 0 {
		serverPort = cfg.Port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	peers, err := network.ResolveAll(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve peers: %w", err)
	}
	if len(peers) == 0 {
		return fmt.Errorf("no peers configured; add a [peers.<direction>] section to %s", config.GetConfigPath())
	}

	direction, err := pickDirection(peers)
	if err != nil {
		return err
	}
	logger.Infof("Forwarding input to %s peer %s", direction, peers[direction])

	// Serve the keyboard layout for peers to pull on demand.
	blobSrv := network.NewBlobServer(serverPort)
	if err := blobSrv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start blob listener: %w", err)
	}
	defer blobSrv.Stop()

	keymap, err := input.LoadKeymap(cfg.Keymap.File)
	if err != nil {
		logger.Warnf("Keymap unavailable, peers will fall back to their own layout: %v", err)
	} else {
		blobSrv.OfferData(protocol.TagKeymap, keymap)
		logger.Infof("Offering keymap (%d bytes)", len(keymap))
	}

	channel, err := network.NewEventChannel(serverPort, peers)
	if err != nil {
		return err
	}
	defer func() { _ = channel.Close() }()
	logger.Infof("Event channel bound on %s", channel.LocalAddr())

	capture := input.NewCapture(cfg.Capture, grabDevices)
	capture.OnEvent(func(e protocol.Event) {
		if err := channel.Send(direction, e); err != nil {
			logger.Warnf("Send failed: %v", err)
		}
	})
	if err := capture.Start(ctx); err != nil {
		return fmt.Errorf("failed to start input capture: %w", err)
	}
	defer capture.Stop()

	logger.Info("Edgehop server running, press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("Shutting down")
	return nil
}

// pickDirection chooses where captured input goes: the --direction
// flag when given, otherwise the single resolved peer, otherwise an
// error since the choice would be ambiguous.
func pickDirection(peers map[config.Direction]*net.UDPAddr) (config.Direction, error) {
	if sendTo != "" {
		dir := config.Direction(sendTo)
		if _, ok := peers[dir]; !ok {
			return "", fmt.Errorf("no resolved peer for direction %q", sendTo)
		}
		return dir, nil
	}
	if len(peers) == 1 {
		for dir := range peers {
			return dir, nil
		}
	}
	return "", fmt.Errorf("multiple peers resolved; pick one with --direction")
}

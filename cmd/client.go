package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/edgehop/edgehop/internal/input"
	"github.com/edgehop/edgehop/internal/logger"
	"github.com/edgehop/edgehop/internal/network"
	"github.com/edgehop/edgehop/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	clientPort int
	serverAddr string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Run Edgehop in client mode (receive and inject input)",
	Long: `Run Edgehop in client mode on the host that receives input. Incoming
events are injected through the uinput kernel module. At startup the
client pulls the sharing host's keyboard layout over TCP.`,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().IntVarP(&clientPort, "port", "p", 0, "Port to receive events on")
	clientCmd.Flags().StringVarP(&serverAddr, "server", "s", "", "Sharing host address (host:port) for the keymap request")
}

func runClient(cmd *cobra.Command, args []string) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("client mode requires root privileges for uinput access\nPlease run with: sudo edgehop client")
	}

	cfg := config.Get()
	if clientPort == 0 {
		clientPort = cfg.Port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	injector, err := input.NewUinputInjector()
	if err != nil {
		return fmt.Errorf("failed to create injector: %w", err)
	}
	defer func() { _ = injector.Close() }()

	fetchKeymap(ctx, cfg, injector)

	channel, err := network.NewEventChannel(clientPort, nil)
	if err != nil {
		return err
	}
	logger.Infof("Listening for events on %s", channel.LocalAddr())

	// Close the socket when the context ends so Receive unblocks.
	go func() {
		<-ctx.Done()
		_ = channel.Close()
	}()

	logger.Info("Edgehop client running, press Ctrl+C to stop")
	for {
		event, err := channel.Receive()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Info("Shutting down")
				return nil
			}
			return err
		}
		if event == nil {
			continue
		}
		if err := input.Dispatch(injector, event); err != nil {
			logger.Warnf("Failed to inject event: %v", err)
		}
	}
}

// fetchKeymap pulls the sharing host's layout. A missing keymap is not
// fatal: raw key codes still inject, the layout just stays local.
func fetchKeymap(ctx context.Context, cfg *config.Config, injector input.Injector) {
	addr := serverAddr
	if addr == "" {
		addr = firstPeerAddr(ctx, cfg)
	}
	if addr == "" {
		logger.Warn("No sharing host configured, skipping keymap request")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	keymap, err := network.RequestBlob(reqCtx, addr, protocol.TagKeymap)
	if err != nil {
		logger.Warnf("Keymap request to %s failed: %v", addr, err)
		return
	}
	if keymap == nil {
		logger.Infof("Sharing host %s offers no keymap", addr)
		return
	}
	if err := injector.LoadKeymap(keymap); err != nil {
		logger.Warnf("Failed to load keymap: %v", err)
	}
}

// firstPeerAddr resolves the first configured peer and returns its
// host:port for the TCP blob exchange.
func firstPeerAddr(ctx context.Context, cfg *config.Config) string {
	for _, dir := range config.Directions {
		addr, err := network.ResolvePeer(ctx, dir, cfg.Peer(dir))
		if err != nil {
			logger.Warnf("Skipping %s peer: %v", dir, err)
			continue
		}
		if addr != nil {
			return net.JoinHostPort(addr.IP.String(), fmt.Sprintf("%d", addr.Port))
		}
	}
	return ""
}

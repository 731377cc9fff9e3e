package cmd

import (
	"fmt"

	"github.com/edgehop/edgehop/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()

		fmt.Printf("Config file: %s\n", config.GetConfigPath())
		fmt.Printf("Port: %d\n", cfg.Port)
		for _, dir := range config.Directions {
			peer := cfg.Peer(dir)
			if peer == nil {
				continue
			}
			host := peer.IP
			if host == "" {
				host = peer.HostName
			}
			port := peer.Port
			if port == 0 {
				port = config.DefaultPort
			}
			fmt.Printf("Peer %s: %s:%d\n", dir, host, port)
		}
		if cfg.Capture.MouseDevice != "" {
			fmt.Printf("Mouse device: %s\n", cfg.Capture.MouseDevice)
		}
		if cfg.Capture.KeyboardDevice != "" {
			fmt.Printf("Keyboard device: %s\n", cfg.Capture.KeyboardDevice)
		}
		if cfg.Keymap.File != "" {
			fmt.Printf("Keymap file: %s\n", cfg.Keymap.File)
		}
	},
}

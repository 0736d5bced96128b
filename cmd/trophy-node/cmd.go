package main

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trophy-node",
		Short: "Button and indicator node for the trophy server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Lookup("debug").Changed {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.PersistentFlags().Bool("debug", false, "Turn on debug logging.")
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigFile, "Configuration file to use.")

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			showVersion()
		},
	}
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Starts the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			return startNode(conf)
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validates the configuration and prints the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			fmt.Printf("server:   %s\n", conf.Endpoint())
			fmt.Printf("link:     %s\n", linkDescription(conf))
			fmt.Printf("buttons:  %s ('0'), %s ('1')\n", conf.Pins.Button1, conf.Pins.Button2)
			fmt.Printf("debounce: %d x %v\n", conf.Debounce.Threshold, conf.Debounce.Tick)
			fmt.Printf("status:   %s\n", conf.Status.Listen)
			return nil
		},
	}
}

func configFromFlags(cmd *cobra.Command) (*Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	conf, err := readConfig(file)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	return conf, nil
}

func linkDescription(c *Config) string {
	if c.Link.Interface == "" {
		return "simulated"
	}
	return c.Link.Interface
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"Quackito/internal/client"
	"Quackito/internal/config"
	"Quackito/internal/effects"
	"Quackito/internal/keeper"
	"Quackito/internal/localstore"
	"Quackito/internal/model"
	"Quackito/internal/render"
	"Quackito/internal/scheduler"
	"Quackito/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const Version = "v0.1.0"

// burstWidth is the column count of the effect line.
const burstWidth = 40

var (
	configPath string
	offline    bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "quackctl",
		Short: "Quackito - look after a virtual duck from your terminal",
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Println(Version)
				return
			}
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default configs/config.yaml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Do not contact the duck server")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// startKeeper restores the local duck and, unless offline, syncs it once.
func startKeeper(ctx context.Context, cfg *config.Config) *keeper.Keeper {
	var api keeper.API
	if !offline {
		api = client.New(cfg.Client.APIURL, cfg.Client.Timeout)
	}
	k := keeper.New(api, cfg.Client.CachePath, cfg.Client.DuckName)
	k.Start(ctx)
	return k
}

func printStatus(k *keeper.Keeper, name string) {
	fmt.Print(render.FormatStatus(render.Status{
		Name:     name,
		Code:     k.Code(),
		Snapshot: k.Snapshot(),
		Mood:     k.Mood(),
		Conn:     k.State().String(),
	}, time.Now()))
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how the duck is doing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		k := startKeeper(cmd.Context(), cfg)
		printStatus(k, cfg.Client.DuckName)
		return nil
	},
}

// actionCmd builds a command that performs one action and shows the result.
func actionCmd(a model.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(a),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			food, _ := cmd.Flags().GetString("food")
			food = strings.ToLower(strings.TrimSpace(food))
			k := startKeeper(cmd.Context(), cfg)
			if _, err := k.Act(cmd.Context(), string(a), food); err != nil {
				return err
			}
			fmt.Println(render.FormatBurst(effects.NewEmitter().Emit(a), burstWidth))
			printStatus(k, cfg.Client.DuckName)
			return nil
		},
	}
}

var (
	feedCmd  = actionCmd(model.ActionFeed, "Feed the duck")
	playCmd  = actionCmd(model.ActionPlay, "Play with the duck")
	sleepCmd = actionCmd(model.ActionSleep, "Put the duck to bed")
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the duck on screen, decaying live; f feeds, p plays, s sleeps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		// Logs go to a file while the full-screen view is up.
		logDir := filepath.Dir(cfg.Client.CachePath)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		logFile, err := tea.LogToFile(filepath.Join(logDir, "quackctl.log"), "")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()

		k := startKeeper(ctx, cfg)
		m := ui.NewWatchModel(ctx, k, cfg.Client.DuckName, effects.NewEmitter())
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

		sched := scheduler.NewScheduler(ctx, ui.ProgramTicker{P: p})
		if err := sched.Register(cfg.Client.TickCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if live, _ := cmd.Flags().GetBool("live"); live && !offline && k.Code() != "" {
			go watchServer(ctx, cfg, k.Code(), p)
		}

		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	},
}

// watchServer forwards the server's pushes to the program until ctx ends.
func watchServer(ctx context.Context, cfg *config.Config, code string, p *tea.Program) {
	c := client.New(cfg.Client.APIURL, cfg.Client.Timeout)
	err := c.Watch(ctx, code, func(d *client.Duck) {
		p.Send(ui.ServerMsg{Duck: d})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[WARN] live watch ended: %v", err)
	}
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the local duck (the server copy is kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := localstore.Clear(cfg.Client.CachePath); err != nil {
			return err
		}
		fmt.Println("Local duck cleared. A new one hatches on the next command.")
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the duck server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := client.New(cfg.Client.APIURL, cfg.Client.Timeout).Health(cmd.Context()); err != nil {
			return fmt.Errorf("server at %s: %w", cfg.Client.APIURL, err)
		}
		fmt.Printf("server at %s is healthy\n", cfg.Client.APIURL)
		return nil
	},
}

func init() {
	feedCmd.Flags().String("food", "", "Food to give: bread, seeds or berries (default bread)")
	watchCmd.Flags().Bool("live", false, "Also print updates pushed by the server")
}

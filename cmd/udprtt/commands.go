package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellsgz/udprtt/internal/api"
	"github.com/wellsgz/udprtt/internal/config"
	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/monitor"
	"github.com/wellsgz/udprtt/internal/paths"
	"github.com/wellsgz/udprtt/internal/probe"
	"github.com/wellsgz/udprtt/internal/tui"
)

const statusShutdownTimeout = 2 * time.Second

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Send timed probes to an echo server and report latency statistics",
		Args:  cobra.NoArgs,
		RunE:  runClient,
	}

	f := cmd.Flags()
	f.String("peer", probe.DefaultPeer, "Echo server address (IP literal)")
	f.IntP("port", "p", probe.DefaultPort, "Echo server UDP port")
	f.IntP("length", "l", probe.DefaultMessageLength, "Probe payload length in bytes")
	f.Uint64P("count", "n", probe.DefaultMessageCount, "Number of probes to send")
	f.IntP("strategy", "s", int(probe.Blocking), "Receive strategy: 0 blocking, 2 busy-poll")
	f.StringP("output", "o", string(config.OutputText), "Summary format: text or json")
	f.Bool("tui", false, "Show live progress view")
	f.String("status-addr", "", "Serve the HTTP status API on this address (e.g. 127.0.0.1:8080)")
	return cmd
}

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Echo every received datagram back to its sender",
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}

	f := cmd.Flags()
	f.IntP("port", "p", probe.DefaultPort, "UDP port to listen on (0 picks an ephemeral port)")
	f.IntP("length", "l", probe.DefaultMessageLength, "Receive buffer length in bytes")
	f.IntP("strategy", "s", int(probe.Blocking), "Receive strategy: 0 blocking, 2 busy-poll")
	f.String("status-addr", "", "Serve the HTTP status API on this address (e.g. 127.0.0.1:8080)")
	return cmd
}

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Measure ICMP echo latency to the peer for comparison",
		Args:  cobra.NoArgs,
		RunE:  runBaseline,
	}

	f := cmd.Flags()
	f.String("peer", probe.DefaultPeer, "Host to ping (IP literal)")
	f.Int("pings", 10, "Number of ICMP echo requests")
	f.Duration("interval", 50*time.Millisecond, "Interval between echo requests")
	f.Duration("timeout", 0, "Overall timeout (0 derives one from pings and interval)")
	f.StringP("output", "o", string(config.OutputText), "Summary format: text or json")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented default configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	})
	return cmd
}

// loadConfig resolves the config file path and loads the configuration for
// role, then applies its logging settings.
func loadConfig(cmd *cobra.Command, role config.Role) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		if p, err := paths.DefaultPaths(); err == nil && p.ConfigExists() {
			configPath = p.ConfigFile
		}
	}

	cfg, err := config.Load(role, configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.Format(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level), cmd.ErrOrStderr())
	if configPath != "" {
		logging.Debug("Config", "loaded configuration file", "path", configPath)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// startStatus serves the status API when addr is set. The returned func
// stops it and is always safe to call.
func startStatus(addr string, hub *monitor.Hub) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	srv := api.NewServer(hub)
	if err := srv.StartAsync(addr); err != nil {
		return nil, err
	}
	logging.Info("Status", "status API listening", "addr", srv.Addr().String())

	return func() {
		if err := srv.Shutdown(statusShutdownTimeout); err != nil {
			logging.Warn("Status", "status API shutdown", "error", err)
		}
	}, nil
}

func writeReport(w io.Writer, output config.Output, report probe.Report) error {
	if output == config.OutputJSON {
		return report.WriteJSON(w)
	}
	return report.WriteText(w)
}

type clientResult struct {
	report probe.Report
	err    error
}

func runClient(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, config.RoleClient)
	if err != nil {
		return err
	}
	pc, err := cfg.Probe()
	if err != nil {
		return err
	}

	client, err := probe.NewClient(pc)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	hub := monitor.NewHub(string(config.RoleClient), client.Peer().String(), pc.Strategy, pc.MessageCount)
	defer hub.Close()
	client.SetObserver(hub)

	stopStatus, err := startStatus(cfg.StatusAddr, hub)
	if err != nil {
		return err
	}
	defer stopStatus()

	var res clientResult
	if cfg.TUI {
		res, err = runClientWithTUI(ctx, client, hub)
		if err != nil {
			return err
		}
	} else {
		res.report, res.err = client.Run(ctx)
		hub.Finish()
	}

	if res.err != nil {
		if errors.Is(res.err, context.Canceled) && res.report.Count > 0 {
			logging.Warn("Client", "run interrupted", "completed", res.report.Count, "total", pc.MessageCount)
			if werr := writeReport(cmd.OutOrStdout(), cfg.Output, res.report); werr != nil {
				return werr
			}
		}
		return res.err
	}

	logging.Debug("Client", "probe run finished", "round_trips", client.RoundTrips())
	return writeReport(cmd.OutOrStdout(), cfg.Output, res.report)
}

// runClientWithTUI runs the probe loop in the background while the live
// view owns the terminal. Quitting the view cancels the run.
func runClientWithTUI(ctx context.Context, client *probe.Client, hub *monitor.Hub) (clientResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan clientResult, 1)
	go func() {
		report, err := client.Run(runCtx)
		hub.Finish()
		// closing subscriptions ends the view even if the final update was dropped
		hub.Close()
		done <- clientResult{report: report, err: err}
	}()

	if _, err := tui.Run(hub, cancel); err != nil {
		cancel()
		<-done
		return clientResult{}, err
	}
	return <-done, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, config.RoleServer)
	if err != nil {
		return err
	}
	pc, err := cfg.Probe()
	if err != nil {
		return err
	}

	srv, err := probe.NewServer(pc)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	hub := monitor.NewHub(string(config.RoleServer), srv.LocalAddr().String(), pc.Strategy, 0)
	defer hub.Close()
	hub.SetEchoSource(srv.Counters)

	stopStatus, err := startStatus(cfg.StatusAddr, hub)
	if err != nil {
		srv.Close()
		return err
	}
	defer stopStatus()

	err = srv.Serve(ctx)
	counters := srv.Counters()
	logging.Info("Server", "echo server stopped", "datagrams", counters.Datagrams, "bytes", counters.Bytes)
	return err
}

func runBaseline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, config.RoleClient)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	pings, err := f.GetInt("pings")
	if err != nil {
		return err
	}
	interval, err := f.GetDuration("interval")
	if err != nil {
		return err
	}
	timeout, err := f.GetDuration("timeout")
	if err != nil {
		return err
	}

	baseline, err := probe.NewBaseline(probe.BaselineConfig{
		Peer:     cfg.Peer,
		Count:    pings,
		Interval: interval,
		Timeout:  timeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	logging.Info("Baseline", "starting icmp echo", "peer", cfg.Peer, "pings", pings)
	report, err := baseline.Run(ctx)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg.Output, report)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	p, err := paths.DefaultPaths()
	if err != nil {
		return err
	}
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		p = &paths.Paths{ConfigFile: configPath}
	}

	created, err := p.CreateDefaultConfig()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", p.ConfigFile)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", p.ConfigFile)
	}
	return nil
}

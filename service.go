package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/kardianos/service"
	"go.uber.org/zap"

	"pencilsketch/core"
	"pencilsketch/shutdown"
)

// serviceStopTimeout bounds how long Stop waits for the watcher to drain.
const serviceStopTimeout = 30 * time.Second

// program runs the inbox watcher under a service manager.
type program struct {
	stderr   io.Writer
	manager  *shutdown.Manager
	exit     chan int
	stopping atomic.Bool

	// exitProcess ends the process when the watcher stops on its own, so the
	// service manager sees the failure. Defaults to os.Exit.
	exitProcess func(code int)
}

// Start loads configuration and starts watching in the background.
func (p *program) Start(s service.Service) error {
	cfg, err := core.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, p.stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// The service manager delivers stop requests, so no signal handling here.
	p.manager = shutdown.NewManager(logger)
	p.exit = make(chan int, 1)
	go func() {
		code := watch(cfg, logger, p.manager, p.stderr)
		if p.stopping.Load() {
			p.exit <- code
			return
		}
		if code == core.ExitCodeSuccess {
			code = core.ExitCodeError
		}
		logger.Error("watcher stopped unexpectedly", zap.Int("exit_code", code))
		logger.Sync()
		p.exit <- code
		p.exitFunc()(code)
	}()
	return nil
}

func (p *program) exitFunc() func(int) {
	if p.exitProcess != nil {
		return p.exitProcess
	}
	return os.Exit
}

// Stop asks the watcher to finish and waits for it.
func (p *program) Stop(s service.Service) error {
	if p.manager == nil {
		return nil
	}
	p.stopping.Store(true)
	p.manager.Trigger(nil)

	select {
	case code := <-p.exit:
		if code != core.ExitCodeSuccess {
			return fmt.Errorf("watcher exited with %s", core.ExitCodeName(code))
		}
		return nil
	case <-time.After(serviceStopTimeout):
		return errors.New("timeout waiting for watcher to stop")
	}
}

func serviceConfig() *service.Config {
	cfg := &service.Config{
		Name:        "pencil-sketch",
		DisplayName: "Pencil Sketch Watcher",
		Description: "Renders images dropped into a hot folder as pencil sketches",
		Arguments:   []string{"service", "run"},
	}
	if wd, err := os.Getwd(); err == nil {
		cfg.WorkingDirectory = wd
	}
	return cfg
}

func newService(stderr io.Writer) (service.Service, error) {
	s, err := service.New(&program{stderr: stderr}, serviceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

func printServiceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pencil service <action>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actions:")
	fmt.Fprintln(w, "  install    Register the inbox watcher with the system service manager")
	fmt.Fprintln(w, "  uninstall  Remove the service (alias: remove)")
	fmt.Fprintln(w, "  start      Start the installed service")
	fmt.Fprintln(w, "  stop       Stop the installed service")
	fmt.Fprintln(w, "  restart    Stop then start the service")
	fmt.Fprintln(w, "  status     Show the service status")
	fmt.Fprintln(w, "  run        Run the watcher under the service manager (used by the service itself)")
}

func runService(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		printServiceUsage(stderr)
		return core.ExitCodeError
	}
	switch args[0] {
	case "help", "-h", "--help":
		printServiceUsage(stdout)
		return core.ExitCodeSuccess
	}

	s, err := newService(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}

	var msg string
	switch args[0] {
	case "install":
		err, msg = s.Install(), "Service installed"
	case "uninstall", "remove":
		err, msg = s.Uninstall(), "Service uninstalled"
	case "start":
		err, msg = s.Start(), "Service started"
	case "stop":
		err, msg = s.Stop(), "Service stopped"
	case "restart":
		err, msg = s.Restart(), "Service restarted"
	case "run":
		err = s.Run()
	case "status":
		status, statusErr := s.Status()
		if statusErr != nil {
			fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), statusErr)
			return core.ExitCodeError
		}
		fmt.Fprintln(stdout, "Service is", statusName(status))
		return core.ExitCodeSuccess
	default:
		fmt.Fprintf(stderr, "unknown service action %q\n\n", args[0])
		printServiceUsage(stderr)
		return core.ExitCodeError
	}

	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		return core.ExitCodeError
	}
	if msg != "" {
		fmt.Fprintln(stdout, successColor.Sprint(msg))
	}
	return core.ExitCodeSuccess
}

func statusName(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "in an unknown state"
	}
}

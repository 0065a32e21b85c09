package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
)

const serviceName = "eto-dashboard"

var (
	SystemUser     string
	SystemPassword string
)

func newServiceCmd() *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Dashboard system service management",
		Long:  "Install, control or run the dashboard web server as a system service",
	}

	verbs := []struct {
		name  string
		short string
		done  string
	}{
		{"install", "Install dashboard system service", "installed"},
		{"uninstall", "Uninstall dashboard system service", "uninstalled"},
		{"start", "Start dashboard system service", "started"},
		{"stop", "Stop dashboard system service", "stopped"},
		{"restart", "Restart dashboard system service", "restarted"},
		{"run", "Run dashboard system service", "ran"},
	}
	for _, verb := range verbs {
		func(name string, short string, done string) {
			cmd := &cobra.Command{
				Use:   name,
				Short: short,
				Long:  short,
				PreRun: func(_ *cobra.Command, _ []string) {
					initLogging()
				},
				Run: func(cmd *cobra.Command, args []string) {
					if err := doServiceVerb(cmd, name); err != nil {
						log.Fatal(err)
					}
					log.Infof("Dashboard service %v", done)
				},
			}
			if name == "install" {
				cmd.Flags().StringVarP(&SystemUser, "user", "u", "", "System user to run the service as")
				cmd.Flags().StringVarP(&SystemPassword, "password", "p", "", "System user password (Windows only)")
			}
			if name == "install" || name == "run" {
				cmd.Flags().StringVarP(&WebAddr, "addr", "a", "", "Interface bind address:port spec (overrides config file)")
			}
			serviceCmd.AddCommand(cmd)
		}(verb.name, verb.short, verb.done)
	}
	return serviceCmd
}

func doServiceVerb(cmd *cobra.Command, action string) error {
	var (
		svcConfig = &service.Config{
			Name: serviceName,
		}
		w = &dashboardWrapper{}
	)

	switch action {
	case "run":
		w.cfg = loadConfig(cmd)

	case "start", "stop", "restart", "uninstall":

	case "install":
		if SystemUser == "" {
			return errors.New("-u/--user flag must be specified")
		}

		args := []string{"service", "run"}
		if ConfigFile != "" {
			abs, err := filepath.Abs(ConfigFile)
			if err != nil {
				return fmt.Errorf("resolving config path: %s", err)
			}
			args = append(args, "--config", abs)
		}
		if WebAddr != "" {
			args = append(args, "--addr", WebAddr)
		}
		if DatabaseURL != "" {
			args = append(args, "--database-url", DatabaseURL)
		}
		if log.GetLevel() == log.DebugLevel {
			args = append(args, "-v")
		} else if log.GetLevel() == log.ErrorLevel {
			args = append(args, "-q")
		}

		svcConfig = &service.Config{
			Name:             serviceName,
			DisplayName:      "ETO Manufacturing Dashboard",
			Description:      "ETO Manufacturing Dashboard Web Service",
			WorkingDirectory: filepath.Dir(os.Args[0]),
			Arguments:        args,
			UserName:         SystemUser,
			Option: map[string]interface{}{
				"Password": SystemPassword,
			},
		}
		log.Debugf("Service arguments: %v", config.Redact(fmt.Sprint(svcConfig.Arguments)))

	default:
		return fmt.Errorf("Unrecognized service action: %q, must be one of: %v, or run", action, service.ControlAction)
	}

	s, err := service.New(w, svcConfig)
	if err != nil {
		return err
	}

	if action == "run" {
		return s.Run()
	}

	if err := service.Control(s, action); err != nil {
		return err
	}
	return nil
}

// dashboardWrapper adapts the daemon to the service.Interface lifecycle.
type dashboardWrapper struct {
	cfg *config.Config
	d   *daemon
}

func (w *dashboardWrapper) Start(s service.Service) error {
	d, err := newDaemon(w.cfg)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	w.d = d
	return nil
}

func (w *dashboardWrapper) Stop(s service.Service) error {
	if w.d == nil {
		return nil
	}
	return w.d.Stop()
}

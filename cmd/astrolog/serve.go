package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"astrolog/internal/app"
	"astrolog/internal/process"
	"astrolog/internal/theme"
	"astrolog/internal/web"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		port        int
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.Config().Server.Port
			}

			srv := web.New(a)
			url, err := srv.Start(ctx, port)
			if err != nil {
				return err
			}

			styles := theme.DefaultStyles()
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("astrolog listening on "+url))

			if openBrowser {
				process.NewOpener().OpenAsync(ctx, url, func(err error) {
					a.Logs().System.Warn("serve: open browser: %v", err)
				})
			}

			return waitForShutdown(cmd, a, srv, styles)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: server.port)")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the API address in the default browser")
	return cmd
}

// waitForShutdown blocks until a signal arrives and stops the server. While
// the close lock is held the server keeps running until the lock is
// released or a second signal forces the stop.
func waitForShutdown(cmd *cobra.Command, a *app.App, srv *web.Server, styles theme.Styles) error {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	released := make(chan struct{}, 1)
	unsubscribe := a.Subscribe(func(event string, payload any) {
		if locked, ok := payload.(bool); event == app.EventCloseLock && ok && !locked {
			select {
			case released <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	<-sigs
	stop := func(force bool) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if force {
			return srv.ForceStop(ctx)
		}
		return srv.Stop(ctx)
	}

	err := stop(false)
	if !errors.Is(err, app.ErrCloseLocked) {
		return err
	}

	a.Logs().System.Warn("serve: shutdown deferred, close lock held")
	fmt.Fprintln(cmd.ErrOrStderr(), styles.Warning.Render("close lock held: waiting for release (signal again to force)"))

	for {
		select {
		case <-released:
			if err := stop(false); !errors.Is(err, app.ErrCloseLocked) {
				return err
			}
		case <-sigs:
			a.Logs().System.Warn("serve: forced shutdown with close lock held")
			return stop(true)
		}
	}
}

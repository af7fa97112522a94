/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nabbar/tcpsock/socket/conn"
	"github.com/nabbar/tcpsock/socket/monitor"
	sckrt "github.com/nabbar/tcpsock/socket/server/tcp"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		verbose    bool
		metricAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a loopback echo server over the connection core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Verbose = verbose || cfg.Verbose

			log := newLogger(cfg.Verbose)
			reg := prometheus.NewRegistry()
			mon := monitor.New(reg)

			if metricAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
					_ = http.ListenAndServe(metricAddr, mux)
				}()
			}

			srv, err := sckrt.New(nil, echoHandler, cfg, addr, sckrt.WithLogger(log), sckrt.WithMonitor(mon))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			log.WithField("addr", addr).Info("serving")
			return srv.Listen(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9000", "address to listen on")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose connection lifecycle logging")
	cmd.Flags().StringVar(&metricAddr, "metrics-addr", "", "address to expose Prometheus metrics on (empty disables)")

	return cmd
}

func echoHandler(b *conn.Bridge) {
	buf := make([]byte, 32*1024)
	for {
		n, err := b.Read(buf)
		if n > 0 {
			_, _ = b.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

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

// Command tcpecho exercises the connection core end to end: "serve" runs an
// echo server over the accept loop, "connect" dials it and echoes stdin.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nabbar/tcpsock/logger"
	"github.com/nabbar/tcpsock/socket/config"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tcpecho",
		Short: "Exercise the connection core with a loopback echo service",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML/JSON/TOML config file (optional)")

	root.AddCommand(newServeCmd(), newConnectCmd())
	return root
}

// loadConfig builds a viper instance from --config (if given) and the
// environment (TCPECHO_* prefix), then decodes it into a socket/config.Config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("tcpecho")
	v.AutomaticEnv()

	// AllSettings only reports keys viper already knows, so bind each
	// configuration key to its TCPECHO_* variable explicitly.
	for _, k := range []string{"buffer_chunks_count", "socket_buffer_size", "send_receive_pool_size",
		"socket_close_timeout_ms", "max_send_packet_size", "verbose", "network"} {
		_ = v.BindEnv(k)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, err
		}
	}

	if f := cmd.Flags().Lookup("verbose"); f != nil {
		_ = v.BindPFlag("verbose", f)
	}
	if f := cmd.Flags().Lookup("network"); f != nil {
		_ = v.BindPFlag("network", f)
	}

	return config.Load(v)
}

func newLogger(verbose bool) logrus.FieldLogger {
	if verbose {
		return logger.New(logrus.DebugLevel)
	}
	return logger.New(logrus.InfoLevel)
}

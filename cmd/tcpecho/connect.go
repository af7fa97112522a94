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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	sckclt "github.com/nabbar/tcpsock/socket/client/tcp"
)

func newConnectCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Dial a server and echo stdin line by line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Verbose = verbose || cfg.Verbose
			log := newLogger(cfg.Verbose)

			cli, err := sckclt.New(addr, sckclt.WithConfig(cfg), sckclt.WithLogger(log))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := cli.Connect(ctx); err != nil {
				return err
			}
			defer cli.Close()

			go drainResponses(cli)

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := append(scanner.Bytes(), '\n')
				if _, err := cli.Write(line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9000", "address to connect to")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose connection lifecycle logging")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "dial timeout")

	return cmd
}

func drainResponses(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			fmt.Print(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

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

// Package config holds the connection core's configuration surface (§6) and
// its validation.
package config

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/tcpsock/errors"
	libptc "github.com/nabbar/tcpsock/network/protocol"
)

// Config is the configuration surface enumerated in §6 of the spec, shared
// by the client and server factories.
type Config struct {
	// BufferChunksCount is the size of the byte buffer pool.
	BufferChunksCount int `mapstructure:"buffer_chunks_count"`

	// SocketBufferSize is the chunk size handed out by the byte buffer pool.
	SocketBufferSize int `mapstructure:"socket_buffer_size"`

	// SendReceivePoolSize is the size of the operation context pool.
	SendReceivePoolSize int `mapstructure:"send_receive_pool_size"`

	// SocketCloseTimeout is the timeout passed to the OS close call.
	SocketCloseTimeout time.Duration `mapstructure:"socket_close_timeout_ms"`

	// MaxSendPacketSize is the 64 KiB (by default) coalescing ceiling.
	MaxSendPacketSize int `mapstructure:"max_send_packet_size"`

	// Verbose enables a counters-snapshot log line on close.
	Verbose bool `mapstructure:"verbose"`

	// Network selects the dial/listen family used by the client and server
	// factories. The connection core itself is protocol-agnostic; this
	// field only steers which net.Dial/net.Listen the factory performs.
	Network libptc.NetworkProtocol `mapstructure:"network"`
}

// Default returns the configuration the spec's defaults imply: a
// DefaultBufferSize chunk, enough chunks and contexts to keep a handful of
// connections fed, and a conservative close timeout.
func Default() Config {
	return Config{
		BufferChunksCount:   64,
		SocketBufferSize:    32 * 1024,
		SendReceivePoolSize: 32,
		SocketCloseTimeout:  5 * time.Second,
		MaxSendPacketSize:   64 * 1024,
		Verbose:             false,
		Network:             libptc.NetworkTCP,
	}
}

// Validate reports the first configuration error found, or nil.
func (c Config) Validate() error {
	if c.BufferChunksCount <= 0 {
		return liberr.ProgrammingError.Errorf("buffer_chunks_count must be > 0, got %d", c.BufferChunksCount)
	}
	if c.SocketBufferSize <= 0 {
		return liberr.ProgrammingError.Errorf("socket_buffer_size must be > 0, got %d", c.SocketBufferSize)
	}
	if c.SendReceivePoolSize <= 0 {
		return liberr.ProgrammingError.Errorf("send_receive_pool_size must be > 0, got %d", c.SendReceivePoolSize)
	}
	if c.MaxSendPacketSize <= 0 {
		return liberr.ProgrammingError.Errorf("max_send_packet_size must be > 0, got %d", c.MaxSendPacketSize)
	}
	if c.SocketCloseTimeout < 0 {
		return liberr.ProgrammingError.Errorf("socket_close_timeout_ms must be >= 0, got %s", c.SocketCloseTimeout)
	}
	if !c.Network.IsStream() {
		return liberr.ProgrammingError.Errorf("network %q is not a byte-stream protocol", c.Network.String())
	}
	return nil
}

// Load decodes a Config out of v, applying Default() for any field left
// unset, and the protocol decoder hook so "network" may be given as a
// string ("tcp") or its ordinal.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       libptc.ViperDecoderHook(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, liberr.UnknownError.Error(err)
	}

	if err = dec.Decode(v.AllSettings()); err != nil {
		return cfg, liberr.UnknownError.Error(err)
	}

	return cfg, cfg.Validate()
}

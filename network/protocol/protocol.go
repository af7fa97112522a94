/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package protocol enumerates the network protocols usable by the socket
// client and server factories.
package protocol

import "strings"

// NetworkProtocol identifies a net.Dial / net.Listen network family.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

var protocolNames = map[NetworkProtocol]string{
	NetworkUnix:     "unix",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
	NetworkUnixGram: "unixgram",
}

var protocolValues = func() map[string]NetworkProtocol {
	m := make(map[string]NetworkProtocol, len(protocolNames))
	for k, v := range protocolNames {
		m[v] = k
	}
	return m
}()

// String returns the net package name of the protocol, or "" if unknown.
func (n NetworkProtocol) String() string {
	return protocolNames[n]
}

// Int returns the ordinal value of the protocol.
func (n NetworkProtocol) Int() int {
	return int(n)
}

// Uint8 returns the raw byte value of the protocol.
func (n NetworkProtocol) Uint8() uint8 {
	return uint8(n)
}

// IsStream reports whether the protocol carries an ordered byte stream
// (as opposed to datagrams). The connection core requires a stream protocol.
func (n NetworkProtocol) IsStream() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

// Parse returns the NetworkProtocol matching s, case-insensitively.
// Unrecognized strings return NetworkEmpty.
func Parse(s string) NetworkProtocol {
	if p, ok := protocolValues[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return NetworkEmpty
}

func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.String() + `"`), nil
}

func (n *NetworkProtocol) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*n = Parse(s)
	return nil
}

func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NetworkProtocol) UnmarshalText(data []byte) error {
	*n = Parse(string(data))
	return nil
}

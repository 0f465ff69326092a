/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package protocol defines the transport-level network protocol identifiers shared
// by the socket dialers, HTTP client, and syslog forwarder across this module.
package protocol

import (
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// NetworkProtocol identifies a network transport, as accepted by net.Dial.
type NetworkProtocol uint8

const (
	// NetworkEmpty is the zero value, used when no protocol has been configured.
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

// String returns the net.Dial-compatible network name, or "" for an unknown value.
func (p NetworkProtocol) String() string {
	return protocolNames[p]
}

// Code is an alias for String, used where a short identifier is expected instead of a
// descriptive name (e.g. viper keys, dial network strings).
func (p NetworkProtocol) Code() string {
	return p.String()
}

// Int returns the protocol's ordinal value, or 0 for NetworkEmpty and unknown values.
func (p NetworkProtocol) Int() int {
	if _, k := protocolNames[p]; !k {
		return 0
	}
	return int(p)
}

// Int64 is the int64 equivalent of Int.
func (p NetworkProtocol) Int64() int64 {
	return int64(p.Int())
}

// Parse resolves a protocol name (case-insensitive) to a NetworkProtocol, returning
// NetworkEmpty if the name is not recognized.
func Parse(s string) NetworkProtocol {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, n := range protocolNames {
		if n == s {
			return p
		}
	}
	return NetworkEmpty
}

// ParseBytes is the []byte equivalent of Parse.
func ParseBytes(b []byte) NetworkProtocol {
	return Parse(string(b))
}

// ParseInt64 resolves an ordinal value to a NetworkProtocol, returning NetworkEmpty if
// the value is out of range.
func ParseInt64(i int64) NetworkProtocol {
	p := NetworkProtocol(i)
	if _, k := protocolNames[p]; !k {
		return NetworkEmpty
	}
	return p
}

// MarshalJSON implements json.Marshaler.
func (p NetworkProtocol) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	*p = Parse(strings.Trim(string(b), `"`))
	return nil
}

// MarshalText implements encoding.TextMarshaler, used by viper/mapstructure string decoding.
func (p NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by viper/mapstructure string decoding.
func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = ParseBytes(b)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *NetworkProtocol) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*p = Parse(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p NetworkProtocol) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

package client

import (
	"encoding/hex"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
)

// TestCase is one probe run. Host and Port override the runner defaults,
// Endpoint overrides both (and is the only override honored by the unix transport).
type TestCase struct {
	Label string `yaml:"label"`
	// Payload is sent as is, PayloadHex (if set) takes precedence and allows non-text bytes
	Payload    string `yaml:"payload"`
	PayloadHex string `yaml:"payload_hex,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	// Idle sends nothing and waits for the server to give up
	Idle bool `yaml:"idle,omitempty"`
}

// Bytes returns the payload to send
func (tc TestCase) Bytes() ([]byte, error) {
	if tc.PayloadHex != "" {
		b, err := hex.DecodeString(tc.PayloadHex)
		if err != nil {
			return nil, fmt.Errorf("invalid payload_hex of case %q: %w", tc.Label, err)
		}
		return b, nil
	}
	return []byte(tc.Payload), nil
}

// DefaultTestCases returns the built-in diagnostic cases
func DefaultTestCases() []TestCase {
	return []TestCase{
		{Label: "1. Normal Message", Payload: "hello server"},
		// empty string: checks how the server responds to zero bytes
		{Label: "2. Empty String", Payload: ""},
		{Label: "3. Wrong Port (simulate ConnectionRefused)", Payload: "test", Port: 9999},
		{Label: "4. Bad Hostname (simulate NameResolutionFailure)", Payload: "test", Host: "no_such_host", Port: 8080},
		{Label: "5. Idle Client (simulate server ReadTimeout)", Idle: true},
		{Label: "6. Invalid Text (simulate server DecodeError)", PayloadHex: "fffe"},
	}
}

// LoadTestCases reads a YAML list of test cases from path
func LoadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}

	var cases []TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse test cases %s: %w", path, err)
	}

	for i, tc := range cases {
		if tc.Label == "" {
			cases[i].Label = fmt.Sprintf("%d. (unnamed)", i+1)
		}
		if _, err := tc.Bytes(); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

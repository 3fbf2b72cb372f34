// Package client runs ordered lists of probe test cases against a oneshot
// server. Each case opens its own connection through a transport.IClientTransport,
// so one failing case never prevents the next one from running.
//
// Usage:
//
//	runner := client.NewRunner(tcp.NewTCPClientTransport(config), config)
//	for _, result := range runner.Run(ctx, client.DefaultTestCases()) {
//		fmt.Print(result.Report())
//	}
//
// Test cases can also be loaded from a YAML file:
//
//	# cases.yaml
//	- label: "1. Normal Message"
//	  payload: "hello server"
//	- label: "3. Wrong Port"
//	  payload: "test"
//	  port: 9999
//	- label: "6. Invalid Text"
//	  payload_hex: "fffe"
package client

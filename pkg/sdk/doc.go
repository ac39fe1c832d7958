// Package ragdex is the client SDK for the ragdex HTTP API.
//
// The client speaks to a running ragdex server and validates every
// response against the wire contract before returning it, so callers
// always receive well-formed records.
//
// Basic usage:
//
//	client := ragdex.New("http://localhost:8080", ragdex.WithAPIKey("secret"))
//
//	doc, err := client.ProcessText(ctx, ragdex.ProcessTextRequest{
//		Text:  "# Setup\n\nInstall the binary...",
//		Title: "Setup Guide",
//	})
//
//	answer, err := client.Query(ctx, ragdex.QueryOptions{
//		Query: "how do I install it?",
//	})
package ragdex

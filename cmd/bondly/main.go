// Package main provides the Bondly CLI.
//
// Usage:
//
//	bondly [flags] <command> [args]
//
// Commands:
//
//	lullaby    - Compose a lullaby and sing it on the speaker
//	say        - Speak text through ElevenLabs on the speaker
//	transcribe - Transcribe a raw L16 recording with Google Speech
//	decode     - Convert a base64 speech payload into a WAV file
//	capture    - Stream a recording to a running server
//	catalog    - Print the built-in catalog
package main

import (
	"fmt"
	"os"

	"github.com/Naimurthedang/bondly-main/cmd/bondly/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

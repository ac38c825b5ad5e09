package main

import (
	"fmt"
	"os"
)

func writeOutput(path string, payload []byte) error {
	if path != "" {
		return os.WriteFile(path, payload, 0o644)
	}
	if _, err := os.Stdout.Write(payload); err != nil {
		return err
	}
	if len(payload) > 0 && payload[len(payload)-1] != '\n' {
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return nil
}

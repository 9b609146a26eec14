package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Println("\nCancelled.")
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"os"

	"github.com/okian/bonusboard/internal/cli"
)

func main() {
	err := cli.Run(context.Background(), cli.Env{Stdout: os.Stdout, Stderr: os.Stderr}, os.Args[1:])
	if err == nil {
		return
	}
	os.Stderr.WriteString("bonusctl: " + err.Error() + "\n")
	if errors.Is(err, cli.ErrUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}

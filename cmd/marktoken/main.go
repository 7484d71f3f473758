// Command marktoken prints a bearer token for a given owner, signed with
// MARKS_JWT_SECRET, so the API can be exercised without an identity provider.
//
//	marktoken --owner alice --ttl 24h
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/config"
)

// CLI holds the parsed flags.
type CLI struct {
	Owner  string        `help:"Owner identity placed in the token subject." required:""`
	TTL    time.Duration `help:"Token lifetime, 0 for no expiry." default:"24h" name:"ttl"`
	Secret string        `help:"HS256 signing secret." env:"MARKS_JWT_SECRET" required:""`
}

func main() {
	config.LoadDotEnv()

	if err := Run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Run parses args and writes the signed token to stdout.
func Run(args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("marktoken"),
		kong.Description("Mint a development bearer token for the marks API"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	token, err := auth.Issue(cli.Secret, cli.Owner, cli.TTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

package main

import (
	"context"
	"fmt"

	"github.com/dentacamp/portal/core"
)

func (cli *commandLine) ping() error {
	if err := cli.api.Ping(context.Background()); err != nil {
		return err
	}
	fmt.Println("platform API is up")
	return nil
}

func (cli *commandLine) magicLink(email string) error {
	email = core.CleanString(email, true /* lower */)
	if err := cli.sessSvc.RequestLogin(context.Background(), email); err != nil {
		return err
	}
	fmt.Printf("magic link sent to %s\n", email)
	return nil
}

func (cli *commandLine) purgeSessions() error {
	n, err := cli.sessSvc.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("purged %d expired session(s)\n", n)
	return nil
}

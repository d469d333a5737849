package cmd

import (
	"context"
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/admin"
	"chirp/internal/config"
)

var adminCmd = &cli.Command{
	Name:  "admin",
	Usage: "Administrative commands",
	Commands: []*cli.Command{
		adminUsersCmd,
	},
}

var adminUsersCmd = &cli.Command{
	Name:  "users",
	Usage: "List every registered user",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(baseServices(),
			pal.Provide(&admin.Lister{}),
			pal.Provide(&adminUsersRunner{}),
		)...)
	},
}

type adminUsersRunner struct {
	Config *config.Config
	Lister *admin.Lister
}

func (r *adminUsersRunner) Run(ctx context.Context) error {
	users, err := r.Lister.Users(ctx)
	if err != nil {
		return loginHint(err)
	}

	for _, user := range users {
		if r.Config.Verbose {
			pp.Println(user)
			continue
		}

		marker := " "
		if user.IsAdmin {
			marker = "a"
		}
		fmt.Printf("#%-4d [%s] @%-16s joined %s\n",
			user.ID, marker, user.Username, user.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/store"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db    *gorm.DB
	store *store.Store
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                               - create or update all tables")
	fmt.Fprintln(cli.out, "  seed -file FILE [-reset]              - import a course structure from JSON")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-admin] - create a password account")
	fmt.Fprintln(cli.out, "  promote -email EMAIL [-role ROLE]     - change a user's role")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedFile := seedCmd.String("file", "", "Path to the course JSON document.")
	seedReset := seedCmd.Bool("reset", false, "Delete existing content, progress and attachments first.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")

	promoteCmd := flag.NewFlagSet("promote", flag.ContinueOnError)
	promoteEmail := promoteCmd.String("email", "", "The user's email.")
	promoteRole := promoteCmd.String("role", models.RoleAdmin, "The new role: admin or user.")

	for _, fs := range []*flag.FlagSet{seedCmd, addUserCmd, promoteCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		return cli.migrate()

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		f, err := os.Open(*seedFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return cli.importCourse(ctx, f, *seedReset)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		role := models.RoleUser
		if *addUserAdmin {
			role = models.RoleAdmin
		}
		return cli.addUser(ctx, *addUserEmail, *addUserName, string(pwd), role)

	case "promote":
		if err := promoteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *promoteEmail == "" {
			promoteCmd.Usage()
			return errHelp
		}
		return cli.promote(ctx, *promoteEmail, *promoteRole)

	default:
		cli.printUsage()
		return errHelp
	}
}

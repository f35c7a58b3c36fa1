package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/studytrack-api/internal/database"
	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/seed"
)

func (cli *commandLine) migrate() error {
	if err := database.Migrate(cli.db); err != nil {
		return errors.Wrap(err, "migrate")
	}
	fmt.Fprintln(cli.out, "tables are up to date")
	return nil
}

func (cli *commandLine) importCourse(ctx context.Context, r io.Reader, reset bool) error {
	course, err := seed.Parse(r)
	if err != nil {
		return err
	}
	stats, err := seed.Import(ctx, cli.db, course, reset)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %s\n", stats)
	return nil
}

func (cli *commandLine) addUser(ctx context.Context, email, name, password, role string) error {
	if len(password) < 6 || len(password) > 72 {
		return errors.New("password must be between 6 and 72 characters")
	}
	if cli.store.GetUserByEmail(ctx, email) != nil {
		return errors.Errorf("%s is already registered", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	user := models.User{
		OpenID:      "temp-" + uuid.NewString(),
		Email:       email,
		Name:        name,
		Password:    string(hashed),
		LoginMethod: "password",
		Role:        role,
	}
	if err := cli.store.CreateUser(ctx, &user); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s user %d <%s>\n", user.Role, user.ID, user.Email)
	return nil
}

func (cli *commandLine) promote(ctx context.Context, email, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return errors.Errorf("unknown role %q", role)
	}

	res := cli.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update role")
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("no user with email %s", email)
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", email, role)
	return nil
}

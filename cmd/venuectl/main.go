// venuectl runs one-off maintenance tasks against the configured store:
// applying the schema, promoting an account to admin and seeding venues
// from a YAML file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/repository"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		usage()
		return nil
	}
	cmd, rest := args[0], args[1:]

	flags := pflag.NewFlagSet("venuectl "+cmd, pflag.ContinueOnError)
	var email, file string
	switch cmd {
	case "migrate":
	case "promote-admin":
		flags.StringVar(&email, "email", "", "email of the account to promote")
	case "seed-venues":
		flags.StringVar(&file, "file", "venues.yaml", "YAML file listing venues")
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := flags.Parse(rest); err != nil {
		return err
	}

	_ = godotenv.Load()
	p := config.Load().DBParams()
	if p.Driver == "memory" {
		return errors.New("DB_DRIVER=memory has nothing to maintain")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cmd == "migrate" {
		db, err := database.Open(p)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db, p.Driver); err != nil {
			return err
		}
		logrus.WithField("driver", p.Driver).Info("schema applied")
		return nil
	}

	st, err := repository.Open(ctx, p, clock.Real(), false)
	if err != nil {
		return err
	}
	defer st.Close()

	switch cmd {
	case "promote-admin":
		return promoteAdmin(ctx, st, email)
	default:
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		venues, err := parseSeed(f)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		added, err := seedVenues(ctx, st, venues)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"added": added, "skipped": len(venues) - added}).Info("venues seeded")
		return nil
	}
}

func promoteAdmin(ctx context.Context, st repository.Store, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("--email is required")
	}
	users := service.NewUserService(service.Deps{Store: st, Log: logrus.StandardLogger()}, 0)
	u, err := users.PromoteAdmin(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", email, err)
	}
	logrus.WithFields(logrus.Fields{"email": u.Email, "id": u.ID}).Info("promoted to admin")
	return nil
}

// seedVenues creates the venues whose name is not taken yet and returns
// how many were added.
func seedVenues(ctx context.Context, st repository.Store, venues []model.Venue) (int, error) {
	added := 0
	for _, v := range venues {
		_, err := st.Venues().GetByName(ctx, v.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return added, err
		}
		if _, err := st.Venues().Create(ctx, v); err != nil {
			return added, fmt.Errorf("venue %q: %w", v.Name, err)
		}
		added++
	}
	return added, nil
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: venuectl <command> [flags]

commands:
  migrate                       apply the database schema
  promote-admin --email ADDR    give an existing account the admin role
  seed-venues [--file PATH]     create venues listed in a YAML file
`)
}

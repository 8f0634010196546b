// cmd/tools/createuser/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/auth"
	"github.com/codr1/clubconnect/internal/config"
	"github.com/codr1/clubconnect/internal/db"
	"github.com/codr1/clubconnect/internal/users"
)

type options struct {
	username string
	trainer  bool
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		configPath = flag.String("config", "config/app.yaml", "Path to app.yaml")
		username   = flag.String("username", "", "Login name for the new account")
		trainer    = flag.Bool("trainer", true, "Grant trainer rights")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Fprint(os.Stderr, "Password: ")
	user, err := createUser(ctx, users.NewStore(database.Queries), options{username: *username, trainer: *trainer}, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}
	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Bool("trainer", user.IsTrainer).Msg("User created")
}

// createUser reads the password from the first line of in.
func createUser(ctx context.Context, store *users.Store, opts options, in io.Reader) (users.User, error) {
	if strings.TrimSpace(opts.username) == "" {
		return users.User{}, errors.New("-username is required")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return users.User{}, fmt.Errorf("read password: %w", err)
	}
	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	return store.Create(ctx, opts.username, hash, opts.trainer)
}

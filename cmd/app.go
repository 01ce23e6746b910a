package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/logger"
	"github.com/vaphq/vap/internal/session"
	"github.com/vaphq/vap/internal/state"
	"github.com/vaphq/vap/internal/tasks"
	"github.com/vaphq/vap/internal/vap"
)

// application wires the session store, the API client and the state store for one command run.
type application struct {
	config   *Config
	logger   *zap.Logger
	fs       afero.Fs
	sessions *session.Store
	client   *vap.Client
	store    *state.Store
	scope    *tasks.Scope

	stop context.CancelFunc
}

func newApplication(cmd *cobra.Command) (*application, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	sessionFile := config.SessionFile
	if sessionFile == "" {
		sessionFile, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	fs := afero.NewOsFs()
	sessions := session.New(fs, sessionFile, log.Named("session"))

	client := vap.New(config.APIURL, sessions, log.Named("api")).WithTimeout(config.Timeout)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	store := state.NewStore(sessions, client, log.Named("state"))
	restored := store.Restore()

	user := ""
	if restored.Auth.User != nil {
		user = restored.Auth.User.Email
	}
	log = logger.WithCommonFields(log, user, config.APIURL).
		With(zap.String(logger.FieldCommand, cmd.CommandPath()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	return &application{
		config:   config,
		logger:   log,
		fs:       fs,
		sessions: sessions,
		client:   client,
		store:    store,
		scope:    tasks.NewScope(ctx, cmd.CommandPath(), log),
		stop:     stop,
	}, nil
}

// run executes fn as a task of the command scope and waits for it.
func (a *application) run(name string, fn func(ctx context.Context) error) error {
	return a.scope.Go(name, fn).Wait(context.Background())
}

// requireLogin fails unless a valid session was restored.
func (a *application) requireLogin() error {
	if !a.store.Snapshot().Auth.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

func (a *application) close() {
	a.scope.Close()
	a.scope.Wait()
	a.stop()
	_ = a.logger.Sync()
}

// withApplication builds the application for a command, runs fn and tears everything down.
func withApplication(fn func(cmd *cobra.Command, args []string, a *application) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			log.Fatal(err)
		}
		defer a.close()

		if err := fn(cmd, args, a); err != nil {
			a.logger.Error("command failed",
				zap.String("reason", vap.Message(err, err.Error())),
				zap.Stringer("kind", vap.KindOf(err)),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}

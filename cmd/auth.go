package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/forms"
	"github.com/vaphq/vap/internal/state"
)

var errNotSignedIn = errors.New("not signed in, run 'vap signin' first")

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and store the session",
	Args:  cobra.NoArgs,
	RunE:  withApplication(signin),
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store the session",
	Args:  cobra.NoArgs,
	RunE:  withApplication(signup),
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  withApplication(signout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  withApplication(whoami),
}

func init() {
	rootCmd.AddCommand(signinCmd, signupCmd, signoutCmd, whoamiCmd)

	signinCmd.Flags().String("email", "", "account email")
	signinCmd.Flags().String("password-file", "", "file containing the password (default: VAP_PASSWORD or prompt)")
	signinCmd.MarkFlagRequired("email")

	signupCmd.Flags().String("name", "", "your name")
	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password-file", "", "file containing the password (default: VAP_PASSWORD or prompt)")
	signupCmd.MarkFlagRequired("name")
	signupCmd.MarkFlagRequired("email")

	signoutCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func signin(cmd *cobra.Command, _ []string, a *application) error {
	email, _ := cmd.Flags().GetString("email")
	passwordFile, _ := cmd.Flags().GetString("password-file")

	password, err := resolvePassword(passwordFile)
	if err != nil {
		return err
	}

	form := forms.SignIn{Email: email, Password: password}
	if err := form.Validate(); err != nil {
		return errors.New(forms.Describe(err))
	}

	a.store.Dispatch(state.SignInOpened{})
	if err := a.run("sign in", func(ctx context.Context) error {
		return a.store.SignIn(ctx, form.Email, form.Password)
	}); err != nil {
		return sliceError(a.store.Snapshot().Auth.Error, err)
	}

	return printSignedIn(cmd, a)
}

func signup(cmd *cobra.Command, _ []string, a *application) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	passwordFile, _ := cmd.Flags().GetString("password-file")

	password, err := resolvePassword(passwordFile)
	if err != nil {
		return err
	}

	form := forms.SignUp{Name: name, Email: email, Password: password}
	if err := form.Validate(); err != nil {
		return errors.New(forms.Describe(err))
	}

	a.store.Dispatch(state.SignUpOpened{})
	if err := a.run("sign up", func(ctx context.Context) error {
		return a.store.SignUp(ctx, form.Name, form.Email, form.Password)
	}); err != nil {
		return sliceError(a.store.Snapshot().Auth.Error, err)
	}

	return printSignedIn(cmd, a)
}

func printSignedIn(cmd *cobra.Command, a *application) error {
	auth := a.store.Snapshot().Auth
	a.logger.Info("signed in", zap.String("user_id", auth.User.ID))

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", auth.User.Name, auth.User.Email)
	return err
}

func signout(cmd *cobra.Command, _ []string, a *application) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := confirm("Sign out and forget the stored session?")
		if err != nil {
			return err
		}
		if !ok {
			a.logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return nil
		}
	}

	a.store.SignOut()
	a.logger.Info("signed out", zap.String("session_file", a.sessions.Path()))

	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return err
}

func whoami(cmd *cobra.Command, _ []string, a *application) error {
	auth := a.store.Snapshot().Auth
	if !auth.IsAuthenticated() {
		return errNotSignedIn
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %s)\n", auth.User.Name, auth.User.Email, auth.User.ID)
	return err
}

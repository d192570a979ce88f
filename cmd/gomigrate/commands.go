package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(sess *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gomigrate",
		Short: "Resumable migration of user data between two directories",
		Long: `gomigrate moves all user data from a source to a destination directory.
A started migration is persisted in a state file and can be resumed until
all files were migrated. Conflicting files are kept in the "conflict"
directory of the source.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return sess.Prepare(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&sess.flags.stateFile, "state", "", "state file of the migration (default $GOMIGRATE_STATE or the user config dir)")
	flags.StringVar(&sess.flags.logFile, "log-file", "", "additionally write JSON logs to this file")
	flags.BoolVar(&sess.flags.debug, "debug", false, "enable debug logging")
	flags.StringVar(&sess.flags.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&sess.flags.memprofile, "memprofile", "", "write memory profile to this file")

	rootCmd.AddCommand(newStartCommand(sess))
	rootCmd.AddCommand(newStatusCommand(sess))
	rootCmd.AddCommand(newRunCommand(sess))
	rootCmd.AddCommand(newFileCommand(sess))
	rootCmd.AddCommand(newAbortCommand(sess))

	return rootCmd
}

func newStartCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "start <source> <destination>",
		Short: "Start a new migration",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(_ *cobra.Command, args []string) error {
			return sess.app.Start(args[0], args[1])
		},
	}
}

func newStatusCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a migration is in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sess.app.Status(cmd.OutOrStdout())
		},
	}
}

func newRunCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run or resume the migration in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := sess.app.Run(cmd.Context())

			return err
		},
	}
}

func newFileCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "file <destination-path>",
		Short: "Migrate a single file ahead of the others",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.app.MigrateFile(cmd.Context(), args[0])
		},
	}
}

func newAbortCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Forget the migration in progress",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return sess.app.Abort()
		},
	}
}

package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fsbridge/pkg/errors"
)

// contentArg returns the content operand, or stdin when --stdin is set
func contentArg(cmd *cobra.Command, args []string) ([]byte, error) {
	if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
		if len(args) > 1 {
			return nil, errors.ValidationError("content argument and --stdin are mutually exclusive")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeRead, "failed to read stdin")
		}
		return data, nil
	}
	if len(args) > 1 {
		return []byte(args[1]), nil
	}
	return nil, nil
}

func printResult(cmd *cobra.Command, ok bool) {
	fmt.Fprintln(cmd.OutOrStdout(), ok)
}

func newWriteCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write PATH [CONTENT]",
		Short: "Create or truncate PATH and write CONTENT to it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, args)
			if err != nil {
				return err
			}
			path := args[0]

			if parents, _ := cmd.Flags().GetBool("parents"); parents {
				ok := s.bridge.WriteToFile(path, string(content))
				printResult(cmd, ok)
				if !ok {
					return errors.New(errors.ErrorTypeWrite, "write failed").WithContext("path", path)
				}
				return nil
			}

			err = s.bridge.Write(path, content)
			printResult(cmd, err == nil)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("write failed")
			}
			return err
		},
	}
	cmd.Flags().Bool("stdin", false, "Read content from standard input")
	cmd.Flags().BoolP("parents", "p", false, "Create missing parent directories first")
	return cmd
}

func newAppendCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append PATH [CONTENT]",
		Short: "Append CONTENT to PATH, creating it if absent",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, args)
			if err != nil {
				return err
			}
			err = s.bridge.Append(args[0], content)
			printResult(cmd, err == nil)
			if err != nil {
				log.Error().Err(err).Str("path", args[0]).Msg("append failed")
			}
			return err
		},
	}
	cmd.Flags().Bool("stdin", false, "Read content from standard input")
	return cmd
}

func newReadCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print the content of PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if trim, _ := cmd.Flags().GetBool("trim"); trim {
				fmt.Fprintln(out, s.bridge.ReadTrimmed(args[0]))
				return nil
			}
			data, err := s.bridge.ReadFile(args[0])
			if err != nil {
				log.Error().Err(err).Str("path", args[0]).Msg("read failed")
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().Bool("trim", false, "Trim surrounding whitespace; print an empty line when PATH is not a regular file")
	return cmd
}

func newExistsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Print whether PATH is a regular file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printResult(cmd, s.bridge.FileExists(args[0]))
			return nil
		},
	}
}

func newMkdirsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdirs PATH",
		Short: "Create directory PATH and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := s.bridge.EnsureDirectory(args[0])
			printResult(cmd, err == nil)
			if err != nil {
				log.Error().Err(err).Str("path", args[0]).Msg("mkdirs failed")
			}
			return err
		},
	}
}

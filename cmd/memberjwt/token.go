package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gourdian25/memberjwt"
	"github.com/spf13/cobra"
)

var errTokenRejected = errors.New("token is not valid")

func newIssueCmd(root *rootOptions) *cobra.Command {
	var (
		memberID      string
		claims        []string
		attributes    []string
		includeMember bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a member without checking credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			custom, err := parseAssignments(claims, true)
			if err != nil {
				return err
			}
			attrs, err := parseAssignments(attributes, false)
			if err != nil {
				return err
			}

			svc, err := root.service()
			if err != nil {
				return err
			}

			payload, err := svc.IssueFromPrincipal(memberjwt.Principal{ID: memberID, Attributes: attrs}, includeMember, custom)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), payload)
		},
	}

	cmd.Flags().StringVar(&memberID, "member-id", "", "member ID placed in the memberId claim")
	cmd.Flags().StringArrayVar(&claims, "claim", nil, "custom claim as name=value, repeatable (integers and booleans are typed)")
	cmd.Flags().StringArrayVar(&attributes, "attr", nil, "member attribute as Name=value, repeatable (e.g. Email=ada@example.com)")
	cmd.Flags().BoolVar(&includeMember, "member", false, "include the member profile in the output")
	_ = cmd.MarkFlagRequired("member-id")
	return cmd
}

func newRenewCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "renew TOKEN",
		Short: "Renew a token, re-signing it once the renewal threshold has passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service()
			if err != nil {
				return err
			}
			token, err := svc.Renew(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), memberjwt.Payload{Token: token})
		},
	}
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check TOKEN",
		Short: "Report whether a token is valid; exits non-zero when it is not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service()
			if err != nil {
				return err
			}
			claims, err := svc.Verify(args[0])
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return fmt.Errorf("%w: %w", errTokenRejected, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return printJSON(cmd.OutOrStdout(), claims)
		},
	}
}

func newClaimsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "Print the standard claims a token issued now would carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := root.service()
			if err != nil {
				return err
			}
			claims, err := svc.Claims()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), claims)
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for seeding a member directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := memberjwt.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 selects the library default)")
	return cmd
}

// parseAssignments turns name=value pairs into a map. With typed set,
// integer and boolean values keep their JSON type.
func parseAssignments(pairs []string, typed bool) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", pair)
		}
		out[name] = value
		if !typed {
			continue
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			out[name] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			out[name] = b
		}
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"sifs_backend/internals/bootstrap"
	"sifs_backend/internals/features/certificates/verification/service"
)

func newVerifyCmd(opt *options, services func() *bootstrap.Services) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify <certificate-number>",
		Short: "Look up a certificate number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opt.timeout)
			defer cancel()

			v, err := services().Verifier.Verify(ctx, args[0])
			if err != nil {
				return errors.New(service.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(raw))
				return err
			}
			c := v.Certificate
			fmt.Fprintf(out, "✅ %s\n", c.CertificateNumber)
			fmt.Fprintf(out, "   Name:        %s\n", c.Name)
			fmt.Fprintf(out, "   Type:        %s\n", c.CertificateType)
			if c.EventTitle != "" {
				fmt.Fprintf(out, "   Event:       %s\n", c.EventTitle)
			}
			if d := c.DisplayDate(); d != "" {
				fmt.Fprintf(out, "   Date:        %s\n", d)
			}
			fmt.Fprintf(out, "   Template:    %s (%s)\n", v.Template.Name, v.Template.Orientation)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verification as JSON")
	return cmd
}

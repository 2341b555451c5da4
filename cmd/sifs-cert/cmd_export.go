package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sifs_backend/internals/bootstrap"
	exportService "sifs_backend/internals/features/certificates/export/service"
	layout "sifs_backend/internals/features/certificates/layout/service"
	"sifs_backend/internals/features/certificates/verification/service"
)

func newExportCmd(opt *options, services func() *bootstrap.Services) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <certificate-number>",
		Short: "Render a certificate to SIFS_Certificate_<number>.png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opt.timeout)
			defer cancel()

			s := services()
			v, err := s.Verifier.Verify(ctx, args[0])
			if err != nil {
				return errors.New(service.UserMessage(err))
			}

			view := layout.NewViewState(1)
			view.ImageLoaded()
			sc := layout.BuildScene(*v, view)

			dl := &exportService.FileDownloader{Dir: dir}
			if err := s.Exporter.WithDownloader(dl).ExportPNG(ctx, sc.Root, v.Template, v.Certificate.CertificateNumber); err != nil {
				var ie *exportService.ImageLoadError
				if errors.As(err, &ie) {
					return fmt.Errorf("%s (%v)", exportService.ImageLoadMessage, ie.Err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "💾 saved %s\n", dl.Saved)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "Output directory")
	return cmd
}

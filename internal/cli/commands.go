package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/contractexplorer/internal/app"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/render"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/view"
)

func (r *runner) serve(cmd *cobra.Command, _ []string) error {
	return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := a.Serve(ctx); err != nil {
			if errors.Is(err, app.ErrProductionBuild) {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return err
		}
		return nil
	})
}

func (r *runner) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load all contract modules and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return render.Contracts(cmd.OutOrStdout(), a.Reload(ctx))
			})
		},
	}
}

func (r *runner) metadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <contract>",
		Short: "Fetch and print the wasm metadata of a loaded contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				m, ok := a.Reload(ctx).Module(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", view.ErrUnknownContract, args[0])
				}
				active := a.Networks().Active()
				opts := m.Default.Options()
				rpcURL := opts.RPCURL
				if rpcURL == "" {
					rpcURL = active.RPCURL
				}
				md, err := a.Metadata().Load(ctx, opts.ContractID, rpcURL, network.Headers(active, network.ServiceRPC))
				if err != nil {
					return fmt.Errorf("could not load metadata for contract %s at the following RPC URL: %s: %w", opts.ContractID, rpcURL, err)
				}
				return render.Metadata(cmd.OutOrStdout(), md)
			})
		},
	}
}

func (r *runner) networksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				return render.Networks(cmd.OutOrStdout(), a.Networks().List(), a.Networks().Active().ID)
			})
		},
	}
}

func (r *runner) labURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lab-url",
		Short: "Print the Stellar Lab URL for the active network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(_ context.Context, a *app.App) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), network.LabURL(a.Networks().Active()))
				return err
			})
		},
	}
}

func (r *runner) signaturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signatures <envelope-xdr>",
		Short: "Check the signatures of a base64 transaction envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				active := a.Networks().Active()
				sigs, err := a.Signatures().Check(ctx, signatures.Request{
					EnvelopeXDR:       args[0],
					NetworkPassphrase: active.Passphrase,
					HorizonURL:        active.HorizonURL,
					Headers:           network.Headers(active, network.ServiceHorizon),
				})
				if err != nil {
					return err
				}
				return render.Signatures(cmd.OutOrStdout(), sigs)
			})
		},
	}
}

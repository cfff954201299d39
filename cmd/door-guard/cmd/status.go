package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/door-guard/internal/api/grpc/status"
	"github.com/oshokin/door-guard/internal/config"
)

var errStatusAddressRequired = errors.New("status address is not set; pass it as an argument or set status_addr")

func newStatusCommand() *cobra.Command {
	var asJSON bool

	command := &cobra.Command{
		Use:   "status [address]",
		Short: "Print the state of a running door-guard.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			address, err := statusTarget(args)
			if err != nil {
				return err
			}

			client, err := api.Dial(address)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			state, err := client.GetStatus(command.Context())
			if err != nil {
				return err
			}

			return printStatus(command.OutOrStdout(), state, asJSON)
		},
	}

	command.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of key: value lines")

	return command
}

// statusTarget prefers the argument and falls back to status_addr from the settings.
// The settings are not validated: the client needs no device credentials.
func statusTarget(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	cfg, err := config.Read(configPath)
	if err != nil {
		return "", err
	}

	if cfg.StatusAddress == "" {
		return "", errStatusAddressRequired
	}

	return cfg.StatusAddress, nil
}

func printStatus(w io.Writer, state *structpb.Struct, asJSON bool) error {
	if asJSON {
		data, err := protojson.MarshalOptions{Multiline: true}.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	}

	values := state.AsMap()

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s: %v\n", key, values[key]); err != nil {
			return err
		}
	}

	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"overtimer/internal/config"
	"overtimer/internal/control"
	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
	"overtimer/internal/core/syncproto"
	"overtimer/internal/platform"
)

const remoteTimeout = 5 * time.Second

//nolint:gochecknoglobals // cobra command is defined at package scope
var launchCmd = &cobra.Command{
	Use:   "launch PRESET",
	Short: "Open a timer in the running instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := presets.ByID(args[0]); !ok {
			return fmt.Errorf("%w: unknown preset %q", model.ErrInvalidPreset, args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *control.Client) error {
			id, err := client.Launch(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

//nolint:gochecknoglobals // cobra command is defined at package scope
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List timers open in the running instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, client *control.Client) error {
			active, err := client.List(ctx)
			if err != nil {
				return err
			}
			for _, summary := range active {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", summary.InstanceID, summary.Title)
			}
			return nil
		})
	},
}

//nolint:gochecknoglobals // cobra command is defined at package scope
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Print the built-in timer presets as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(presets.All()); err != nil {
			return fmt.Errorf("encode presets: %w", err)
		}
		return encoder.Close()
	},
}

//nolint:gochecknoglobals // cobra command is defined at package scope
var controlCmd = &cobra.Command{
	Use:   "control ACTION [INSTANCE|VALUE]",
	Short: "Send a control request to the running instance",
	Long: "Actions: start, pause, reset, close and focus take an instance id as printed by `overtimer list`; " +
		"state prints an instance snapshot as YAML; volume takes a global volume between 0 and 1; mute toggles the global mute.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := controlRequest(args)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *control.Client) error {
			response, err := client.Call(ctx, request)
			if err != nil {
				return err
			}
			if request.Kind != syncproto.GetState {
				return nil
			}
			if response.Instance == nil {
				return fmt.Errorf("%w: %s", model.ErrUnknownInstance, request.InstanceID)
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(response.Instance)
		})
	},
}

var instanceActions = map[string]syncproto.RequestKind{
	"start": syncproto.StartTimer,
	"pause": syncproto.PauseTimer,
	"reset": syncproto.ResetTimer,
	"close": syncproto.CloseTimer,
	"focus": syncproto.FocusTimer,
	"state": syncproto.GetState,
}

// controlRequest turns command-line arguments into a request.
func controlRequest(args []string) (syncproto.Request, error) {
	action := args[0]
	if kind, ok := instanceActions[action]; ok {
		if len(args) != 2 {
			return syncproto.Request{}, fmt.Errorf("%s needs an instance id", action)
		}
		request := syncproto.NewRequest(kind)
		request.InstanceID = model.InstanceID(args[1])
		return request, nil
	}

	switch action {
	case "volume":
		if len(args) != 2 {
			return syncproto.Request{}, errors.New("volume needs a value between 0 and 1")
		}
		volume, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return syncproto.Request{}, fmt.Errorf("parse volume: %w", err)
		}
		if math.IsNaN(volume) || math.IsInf(volume, 0) {
			return syncproto.Request{}, fmt.Errorf("volume must be a number between 0 and 1, got %s", args[1])
		}
		request := syncproto.NewRequest(syncproto.SetGlobalVolume)
		request.Volume = volume
		return request, nil
	case "mute":
		return syncproto.NewRequest(syncproto.ToggleGlobalMute), nil
	default:
		return syncproto.Request{}, fmt.Errorf("unknown action %q", action)
	}
}

func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *control.Client) error) error {
	if _, err := loadSettings(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	client, err := control.Dial(ctx, config.AppName)
	if errors.Is(err, platform.ErrNotRunning) {
		return errors.New("overtimer is not running")
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	return fn(ctx, client)
}

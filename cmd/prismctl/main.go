package main

import (
	"fmt"
	"os"
	"prismora-backend/internal/canvas"
	"strconv"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "prismctl",
		Short: "Offline tools for Prismora board layouts",
		Long: `prismctl runs the board layout engine against snapshot files
(YAML or JSON) without a server: spread overlapping cards apart,
pick connection ports and map points between screen and canvas space.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("output", "o", "yaml", "output format: yaml or json")

	// Add commands
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newPortsCommand())
	rootCmd.AddCommand(newMapCommand())

	return rootCmd
}

func newResolveCommand() *cobra.Command {
	var (
		padding    float64
		snapGrid   float64
		iterations int
		target     string
	)

	cmd := &cobra.Command{
		Use:   "resolve <snapshot|->",
		Short: "Move cards so their padded boxes no longer overlap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if padding < 0 || snapGrid < 0 || iterations < 0 {
				return fmt.Errorf("options must not be negative")
			}
			s, err := readSnapshot(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts := canvas.DefaultResolveOptions()
			opts.Padding = padding
			opts.SnapToGrid = snapGrid
			if iterations > 0 {
				opts.MaxIterations = iterations
			}
			s.resolve(opts, target)

			format, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), format, s)
		},
	}

	cmd.Flags().Float64Var(&padding, "padding", canvas.DefaultPadding, "gap kept around every card")
	cmd.Flags().Float64Var(&snapGrid, "snap", 0, "snap resolved positions to this grid (0 disables)")
	cmd.Flags().IntVar(&iterations, "iterations", canvas.DefaultMaxIterations, "placement attempts per card")
	cmd.Flags().StringVar(&target, "target", "", "only move the card with this id")

	return cmd
}

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports <snapshot|->",
		Short: "Print ports, Bezier paths and bounds for the snapshot's connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSnapshot(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := s.connectors()
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), format, report)
		},
	}
}

func newMapCommand() *cobra.Command {
	var (
		panX, panY float64
		zoom       float64
		toClient   bool
	)

	cmd := &cobra.Command{
		Use:   "map <x> <y>",
		Short: "Convert a point between client (screen) and canvas coordinates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}

			v := canvas.Viewport{Pan: canvas.Point{X: panX, Y: panY}, Zoom: zoom}
			p := canvas.Point{X: x, Y: y}
			if toClient {
				p = canvas.CanvasToClient(p, v)
			} else {
				p = canvas.ClientToCanvas(p, v)
			}

			format, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), format, p)
		},
	}

	cmd.Flags().Float64Var(&panX, "pan-x", 0, "viewport pan x")
	cmd.Flags().Float64Var(&panY, "pan-y", 0, "viewport pan y")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "viewport zoom")
	cmd.Flags().BoolVar(&toClient, "to-client", false, "convert canvas to client instead")

	return cmd
}

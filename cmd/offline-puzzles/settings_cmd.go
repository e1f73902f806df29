package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/offline-puzzles/internal/puzzle"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change trainer settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings record as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := openStore()
		c, err := store.Read()
		switch {
		case err == nil:
		case errors.Is(err, settings.ErrSerialization):
			fmt.Fprintln(cmd.ErrOrStderr(), catalog.RenderOr("settings.corrupt", "Config file is corrupt, showing defaults.", nil))
			c = settings.Default()
		default:
			fmt.Fprintln(cmd.ErrOrStderr(), catalog.RenderOr("settings.store_unreachable", "Error reading config file.", nil))
			c = settings.Default()
		}
		b, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one field and save",
	Long: "Fields: " + fieldNames() + `

An empty value clears engine_path. An empty search_results_limit means 0,
which caps searches at ` + strconv.Itoa(puzzle.MaxResults) + ` puzzles.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := settings.ParseField(args[0])
		if err != nil {
			return err
		}
		editor := settings.NewEditor(openStore(), settings.WithMessages(catalog), settings.WithEditorLogger(logger))
		if _, err := editor.ApplyFieldChange(field, args[1]); err != nil {
			return err
		}
		saveErr := editor.Save()
		fmt.Fprintln(cmd.OutOrStdout(), editor.Status())
		return saveErr
	},
}

var settingsWindowCmd = &cobra.Command{
	Use:   "window <width> <height>",
	Short: "Persist the window size",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: width %q", settings.ErrValidation, args[0])
		}
		h, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: height %q", settings.ErrValidation, args[1])
		}
		if err := openStore().SaveWindowSize(uint32(w), uint32(h)); err != nil {
			return err
		}
		data := map[string]any{"Width": w, "Height": h}
		fmt.Fprintln(cmd.OutOrStdout(), catalog.RenderOr("settings.window_saved", fmt.Sprintf("Window size saved (%dx%d).", w, h), data))
		return nil
	},
}

func fieldNames() string {
	var names []string
	for _, f := range settings.Fields() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsWindowCmd)
}

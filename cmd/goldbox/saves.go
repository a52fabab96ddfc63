package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Inspect and manage save slots",
	Long: `Inspect the save slots written by the game.

The main menu saves to "manual" and F5 saves to "quick"; either alias or
the full slot name is accepted.

Examples:
  goldbox saves list
  goldbox saves show quick
  goldbox saves delete manual`,
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List save slots",
	Args:  cobra.NoArgs,
	RunE:  runSavesList,
}

var savesShowCmd = &cobra.Command{
	Use:   "show <slot>",
	Short: "Print a save slot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavesShow,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavesDelete,
}

func init() {
	savesCmd.AddCommand(savesListCmd, savesShowCmd, savesDeleteCmd)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Underline(true)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("178")).Padding(0, 1)
)

// slotName expands the "manual" and "quick" aliases.
func slotName(arg string) string {
	switch strings.ToLower(arg) {
	case "manual":
		return gamestate.SlotManual
	case "quick":
		return gamestate.SlotQuick
	default:
		return arg
	}
}

func withSlots(cmd *cobra.Command, fn func(ctx context.Context, slots storage.Slots) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slots, err := openSlots(cfg)
	if err != nil {
		return err
	}
	defer slots.Close()
	return fn(cmd.Context(), slots)
}

func runSavesList(cmd *cobra.Command, _ []string) error {
	return withSlots(cmd, func(ctx context.Context, slots storage.Slots) error {
		infos, err := slots.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list saves: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSlots(infos))
		return nil
	})
}

// renderSlots formats slot metadata as a table.
func renderSlots(infos []storage.SlotInfo) string {
	if len(infos) == 0 {
		return dimStyle.Render("No saves yet.")
	}

	nameW := len("SLOT")
	for _, in := range infos {
		nameW = max(nameW, len(in.Name))
	}
	row := func(style lipgloss.Style, name, size, updated string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			style.Width(nameW+2).Render(name),
			style.Width(10).Align(lipgloss.Right).Render(size),
			style.PaddingLeft(2).Render(updated),
		)
	}

	lines := []string{titleStyle.Render("Save slots"), "", row(headerStyle, "SLOT", "BYTES", "UPDATED")}
	for _, in := range infos {
		lines = append(lines, row(cellStyle, in.Name, fmt.Sprint(in.Size), in.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func runSavesShow(cmd *cobra.Command, args []string) error {
	return withSlots(cmd, func(ctx context.Context, slots storage.Slots) error {
		slot := slotName(args[0])
		st, err := gamestate.ReadSlot(ctx, slots, slot)
		if err != nil {
			return err
		}
		data, err := gamestate.Marshal(st)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, boxStyle.Render(summary(slot, st)))
		fmt.Fprintln(out, string(data))
		return nil
	})
}

// summary is the one-glance header printed above a save's JSON.
func summary(slot string, st gamestate.State) string {
	names := make([]string, len(st.Party.Characters))
	for i, c := range st.Party.Characters {
		names[i] = fmt.Sprintf("%s (%d/%d)", c.Name, c.HitPoints.Current, c.HitPoints.Max)
	}
	lines := []string{
		titleStyle.Render(slot),
		cellStyle.Render("Party: " + strings.Join(names, ", ")),
		cellStyle.Render(fmt.Sprintf("Gold: %d   Map: %s   Screen: %s", st.Party.Gold, st.Party.Position.MapID, st.UI.ActiveScreen)),
	}
	if st.Combat != nil {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("In combat, round %d", st.Combat.RoundNumber)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func runSavesDelete(cmd *cobra.Command, args []string) error {
	return withSlots(cmd, func(ctx context.Context, slots storage.Slots) error {
		slot := slotName(args[0])
		if err := slots.Delete(ctx, slot); err != nil {
			return fmt.Errorf("failed to delete %s: %w", slot, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", slot)
		return nil
	})
}
